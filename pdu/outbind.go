package pdu

import (
	"fmt"
)

// Outbind is sent by the SMSC to an ESME to signal that it should bind.
// It carries no response; the ESME is expected to reply by opening a
// normal bind_transmitter/receiver/transceiver sequence.
type Outbind struct {
	SystemID string
	Password string
}

// CommandID implements pdu.PDU interface.
func (p Outbind) CommandID() CommandID {
	return OutbindID
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p Outbind) MarshalBinary() ([]byte, error) {
	out := append([]byte(p.SystemID), 0)
	out = append(out, append([]byte(p.Password), 0)...)
	return out, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (p *Outbind) UnmarshalBinary(body []byte) error {
	buf := newBuffer(body)
	res, err := buf.ReadCString(16)
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding system_id %s", err)
	}
	p.SystemID = string(res)
	res, err = buf.ReadCString(9)
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding password %s", err)
	}
	p.Password = string(res)
	return nil
}
