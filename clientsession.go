package smpp

import (
	"github.com/codcod/smpp/pdu"
)

// ClientSessionConf configures ClientHandler, the automatic responder an
// ESME installs as its session Handler so the host only has to react to
// deliver_sm and lifecycle events instead of every inbound PDU.
type ClientSessionConf struct {
	// OnBindSuccess fires once the peer confirms a bind with ESME_ROK.
	OnBindSuccess func(bindType pdu.CommandID)
	// OnUnbind fires when the peer-initiated or locally-initiated unbind
	// completes and the session has transitioned out of any Bound state.
	OnUnbind func()
	// OnDeliverSm fires for every deliver_sm received after the automatic
	// deliver_sm_resp(ESME_ROK) has already been sent.
	OnDeliverSm func(ctx *Context, p *pdu.DeliverSm)
	// OnConnectionLost fires when the underlying connection fails or is
	// closed outside of a requested unbind.
	OnConnectionLost func(err error)
}

// ClientHandler implements Handler for ESME-side sessions: it auto-responds
// to deliver_sm, enquire_link, and peer-initiated unbind, and surfaces the
// events a host actually needs to act on via the configured callbacks.
// Install it as SessionConf.Handler for ESME-type sessions. OnBindSuccess
// and OnConnectionLost fire from the bind helpers and the session's read
// loop respectively, since bind and unbind responses are consumed there
// rather than dispatched through ServeSMPP.
type ClientHandler struct {
	conf ClientSessionConf
}

// NewClientHandler builds a ClientHandler from conf.
func NewClientHandler(conf ClientSessionConf) *ClientHandler {
	return &ClientHandler{conf: conf}
}

// ServeSMPP implements Handler.
func (h *ClientHandler) ServeSMPP(ctx *Context) {
	switch ctx.CommandID() {
	case pdu.DeliverSmID:
		h.handleDeliverSm(ctx)
	case pdu.EnquireLinkID:
		ctx.Respond(&pdu.EnquireLinkResp{}, pdu.StatusOK)
	case pdu.UnbindID:
		h.handleUnbind(ctx)
	default:
		ctx.sess.conf.Logger.InfoF("client ignoring unsolicited pdu: %s %s", ctx.sess, ctx.CommandID())
	}
}

func (h *ClientHandler) handleDeliverSm(ctx *Context) {
	req, err := ctx.DeliverSm()
	if err != nil {
		return
	}
	if err := ctx.Respond(req.Response(""), pdu.StatusOK); err != nil {
		return
	}
	if h.conf.OnDeliverSm != nil {
		h.conf.OnDeliverSm(ctx, req)
	}
}

func (h *ClientHandler) handleUnbind(ctx *Context) {
	ctx.Respond(&pdu.UnbindResp{}, pdu.StatusOK)
	ctx.close = true
	if h.conf.OnUnbind != nil {
		h.conf.OnUnbind()
	}
}
