package smpp

import (
	"strconv"
	"sync/atomic"

	"github.com/codcod/smpp/pdu"
	"github.com/codcod/smpp/validate"
)

// Authenticator verifies bind credentials presented by a connecting ESME.
// The default accepts everything; hosts typically replace it.
type Authenticator func(systemID, password, systemType string) bool

func allowAll(string, string, string) bool { return true }

// ServerSessionConf configures ServerHandler.
type ServerSessionConf struct {
	// SystemID is returned to the peer in bind responses.
	SystemID string
	// Authenticate validates bind credentials. Defaults to accept-all.
	Authenticate Authenticator
	// MessageID allocates the message_id returned in submit_sm_resp; it
	// must return a distinct value on every call. Defaults to a
	// server-wide decimal counter.
	MessageID func() string
	// OnClientBound fires after a successful bind.
	OnClientBound func(ctx *Context, systemID string, bindType pdu.CommandID)
	// OnMessageReceived fires for every accepted submit_sm and may
	// return a custom message_id to use instead of MessageID()'s value.
	OnMessageReceived func(ctx *Context, req *pdu.SubmitSm) (customID string, ok bool)
	// OnUnbind fires when a peer requests unbind.
	OnUnbind func(ctx *Context)

	Metrics *Metrics
}

// ServerHandler implements Handler per the server-side session rules: bind
// authentication, bound-state enforcement for submit_sm, a server-wide
// message_id counter, and automatic enquire_link/unbind responses. Install
// it as SessionConf.Handler for SMSC-type sessions.
type ServerHandler struct {
	conf    ServerSessionConf
	counter uint64
}

// NewServerHandler builds a ServerHandler, filling in defaults for any
// unset hook.
func NewServerHandler(conf ServerSessionConf) *ServerHandler {
	if conf.Authenticate == nil {
		conf.Authenticate = allowAll
	}
	h := &ServerHandler{conf: conf}
	if conf.MessageID == nil {
		h.conf.MessageID = h.nextMessageID
	}
	return h
}

func (h *ServerHandler) nextMessageID() string {
	return strconv.FormatUint(atomic.AddUint64(&h.counter, 1), 10)
}

// ServeSMPP implements Handler.
func (h *ServerHandler) ServeSMPP(ctx *Context) {
	switch ctx.CommandID() {
	case pdu.BindTransmitterID, pdu.BindReceiverID, pdu.BindTransceiverID:
		h.handleBind(ctx)
	case pdu.UnbindID:
		h.handleUnbind(ctx)
	case pdu.SubmitSmID:
		h.handleSubmitSm(ctx)
	case pdu.EnquireLinkID:
		ctx.Respond(&pdu.EnquireLinkResp{}, pdu.StatusOK)
	case pdu.DataSmID:
		h.handleDataSm(ctx)
	default:
		ctx.Respond(&pdu.GenericNack{}, pdu.StatusInvCmdID)
	}
}

func (h *ServerHandler) handleBind(ctx *Context) {
	ctx.sess.mu.Lock()
	alreadyBound := ctx.sess.state == StateBoundTx || ctx.sess.state == StateBoundRx || ctx.sess.state == StateBoundTRx
	ctx.sess.mu.Unlock()
	if alreadyBound {
		ctx.Respond(&pdu.GenericNack{}, pdu.StatusAlyBnd)
		return
	}

	var systemID, password, systemType string
	var resp pdu.PDU
	switch ctx.CommandID() {
	case pdu.BindTransmitterID:
		req, _ := ctx.BindTx()
		systemID, password, systemType = req.SystemID, req.Password, req.SystemType
		resp = &pdu.BindTxResp{SystemID: h.conf.SystemID}
	case pdu.BindReceiverID:
		req, _ := ctx.BindRx()
		systemID, password, systemType = req.SystemID, req.Password, req.SystemType
		resp = &pdu.BindRxResp{SystemID: h.conf.SystemID}
	case pdu.BindTransceiverID:
		req, _ := ctx.BindTRx()
		systemID, password, systemType = req.SystemID, req.Password, req.SystemType
		resp = &pdu.BindTRxResp{SystemID: h.conf.SystemID}
	}

	if !h.conf.Authenticate(systemID, password, systemType) {
		h.conf.Metrics.bindFailed()
		ctx.Respond(&pdu.GenericNack{}, pdu.StatusBindFail)
		return
	}

	ctx.sess.mu.Lock()
	ctx.sess.systemID = systemID
	ctx.sess.mu.Unlock()
	if err := ctx.Respond(resp, pdu.StatusOK); err != nil {
		return
	}
	if h.conf.OnClientBound != nil {
		h.conf.OnClientBound(ctx, systemID, ctx.CommandID())
	}
}

func (h *ServerHandler) handleUnbind(ctx *Context) {
	ctx.Respond(&pdu.UnbindResp{}, pdu.StatusOK)
	if h.conf.OnUnbind != nil {
		h.conf.OnUnbind(ctx)
	}
	ctx.close = true
}

func (h *ServerHandler) handleSubmitSm(ctx *Context) {
	ctx.sess.mu.Lock()
	state := ctx.sess.state
	ctx.sess.mu.Unlock()
	if state != StateBoundTx && state != StateBoundTRx {
		ctx.Respond(&pdu.GenericNack{}, pdu.StatusInvBnd)
		return
	}
	req, err := ctx.SubmitSm()
	if err != nil {
		ctx.Respond(&pdu.GenericNack{}, pdu.StatusSubmitFail)
		return
	}
	if verr := validateSubmitSm(req); verr != nil {
		ctx.Respond(&pdu.GenericNack{}, pdu.StatusSubmitFail)
		return
	}

	msgID := h.conf.MessageID()
	if h.conf.OnMessageReceived != nil {
		if customID, ok := h.conf.OnMessageReceived(ctx, req); ok {
			msgID = customID
		}
	}
	ctx.Respond(req.Response(msgID), pdu.StatusOK)
}

func validateSubmitSm(req *pdu.SubmitSm) error {
	if err := validate.ServiceType(req.ServiceType); err != nil {
		return err
	}
	if err := validate.Address(req.SourceAddr, req.SourceAddrTon, req.SourceAddrNpi, "source"); err != nil {
		return err
	}
	if err := validate.Address(req.DestinationAddr, req.DestAddrTon, req.DestAddrNpi, "destination"); err != nil {
		return err
	}
	if err := validate.EsmClass(int(req.EsmClass.Byte())); err != nil {
		return err
	}
	if err := validate.PriorityFlag(req.PriorityFlag); err != nil {
		return err
	}
	if err := validate.RegisteredDelivery(int(req.RegisteredDelivery.Byte())); err != nil {
		return err
	}
	if err := validate.DataCoding(req.DataCoding); err != nil {
		return err
	}
	return validate.MessageLength([]byte(req.ShortMessage), req.DataCoding)
}

func (h *ServerHandler) handleDataSm(ctx *Context) {
	req, err := ctx.DataSm()
	if err != nil {
		ctx.Respond(&pdu.GenericNack{}, pdu.StatusSysErr)
		return
	}
	if err := validate.Address(req.SourceAddr, req.SourceAddrTon, req.SourceAddrNpi, "source"); err != nil {
		ctx.Respond(&pdu.GenericNack{}, pdu.StatusInvParLen)
		return
	}
	if err := validate.Address(req.DestinationAddr, req.DestAddrTon, req.DestAddrNpi, "destination"); err != nil {
		ctx.Respond(&pdu.GenericNack{}, pdu.StatusInvParLen)
		return
	}
	ctx.Respond(req.Response(h.conf.MessageID()), pdu.StatusOK)
}
