package pdu

// emptyBody implements the codec for the several SMPP PDUs that carry no
// mandatory parameters at all: unbind, enquire_link, generic_nack and their
// responses all marshal to zero bytes and ignore whatever they're handed.
type emptyBody struct{}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (emptyBody) MarshalBinary() ([]byte, error) { return nil, nil }

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (emptyBody) UnmarshalBinary([]byte) error { return nil }

// Unbind defines unbind PDU.
type Unbind struct{ emptyBody }

// CommandID implements pdu.PDU interface.
func (p Unbind) CommandID() CommandID {
	return UnbindID
}

// Response creates new UnbindResp.
func (p Unbind) Response() *UnbindResp {
	return &UnbindResp{}
}

// UnbindResp defines unbind_resp PDU.
type UnbindResp struct{ emptyBody }

// CommandID implements pdu.PDU interface.
func (p UnbindResp) CommandID() CommandID {
	return UnbindRespID
}

// EnquireLink PDU.
type EnquireLink struct{ emptyBody }

// CommandID implements pdu.PDU interface.
func (p EnquireLink) CommandID() CommandID {
	return EnquireLinkID
}

// Response creates new EnquireLinkResp.
func (p EnquireLink) Response() *EnquireLinkResp {
	return &EnquireLinkResp{}
}

// EnquireLinkResp PDU response.
type EnquireLinkResp struct{ emptyBody }

// CommandID implements pdu.PDU interface.
func (p EnquireLinkResp) CommandID() CommandID {
	return EnquireLinkRespID
}

// GenericNack PDU.
type GenericNack struct{ emptyBody }

// CommandID implements pdu.PDU interface.
func (p GenericNack) CommandID() CommandID {
	return GenericNackID
}
