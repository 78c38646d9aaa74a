package pdu

import (
	"fmt"

	"github.com/codcod/smpp/validate"
)

// bindParams is the field set shared by bind_transmitter, bind_receiver and
// bind_transceiver; only the command_id differs between the three.
type bindParams struct {
	SystemID         string
	Password         string
	SystemType       string
	InterfaceVersion int
	AddrTon          int
	AddrNpi          int
	AddressRange     string
}

// BindTx binding pdu in transmitter mode.
type BindTx struct {
	SystemID         string
	Password         string
	SystemType       string
	InterfaceVersion int
	AddrTon          int
	AddrNpi          int
	AddressRange     string
}

// CommandID implements pdu.PDU interface.
func (p BindTx) CommandID() CommandID {
	return BindTransmitterID
}

// Response creates new BindTxResp.
func (p BindTx) Response(sysID string) *BindTxResp {
	return &BindTxResp{SystemID: sysID}
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p BindTx) MarshalBinary() ([]byte, error) {
	return marshalBind(bindParams(p))
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (p *BindTx) UnmarshalBinary(body []byte) error {
	b, err := unmarshalBind(body)
	if err != nil {
		return err
	}
	*p = BindTx(b)
	return nil
}

// BindRx binding pdu in receiver mode.
type BindRx struct {
	SystemID         string
	Password         string
	SystemType       string
	InterfaceVersion int
	AddrTon          int
	AddrNpi          int
	AddressRange     string
}

// CommandID implements pdu.PDU interface.
func (p BindRx) CommandID() CommandID {
	return BindReceiverID
}

// Response creates new BindRxResp.
func (p BindRx) Response(sysID string) *BindRxResp {
	return &BindRxResp{SystemID: sysID}
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p BindRx) MarshalBinary() ([]byte, error) {
	return marshalBind(bindParams(p))
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (p *BindRx) UnmarshalBinary(body []byte) error {
	b, err := unmarshalBind(body)
	if err != nil {
		return err
	}
	*p = BindRx(b)
	return nil
}

// BindTRx binding PDU in transceiver mode.
type BindTRx struct {
	SystemID         string
	Password         string
	SystemType       string
	InterfaceVersion int
	AddrTon          int
	AddrNpi          int
	AddressRange     string
}

// CommandID implements pdu.PDU interface.
func (p BindTRx) CommandID() CommandID {
	return BindTransceiverID
}

// Response creates new BindTRxResp.
func (p BindTRx) Response(sysID string) *BindTRxResp {
	return &BindTRxResp{SystemID: sysID}
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p BindTRx) MarshalBinary() ([]byte, error) {
	return marshalBind(bindParams(p))
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (p *BindTRx) UnmarshalBinary(body []byte) error {
	b, err := unmarshalBind(body)
	if err != nil {
		return err
	}
	*p = BindTRx(b)
	return nil
}

// bindRespFields is shared by the three bind response PDUs.
type bindRespFields struct {
	SystemID string
	Options  *Options
}

// BindTxResp bind response.
type BindTxResp bindRespFields

// CommandID implements pdu.PDU interface.
func (p BindTxResp) CommandID() CommandID {
	return BindTransmitterRespID
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p BindTxResp) MarshalBinary() ([]byte, error) {
	return cStringOptsRespMarshal(p.SystemID, p.Options)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (p *BindTxResp) UnmarshalBinary(body []byte) error {
	var err error
	p.SystemID, p.Options, err = cStringOptsRespUnmarshal(body)
	return err
}

// BindRxResp bind response.
type BindRxResp bindRespFields

// CommandID implements pdu.PDU interface.
func (p BindRxResp) CommandID() CommandID {
	return BindReceiverRespID
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p BindRxResp) MarshalBinary() ([]byte, error) {
	return cStringOptsRespMarshal(p.SystemID, p.Options)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (p *BindRxResp) UnmarshalBinary(body []byte) error {
	var err error
	p.SystemID, p.Options, err = cStringOptsRespUnmarshal(body)
	return err
}

// BindTRxResp bind response.
type BindTRxResp bindRespFields

// CommandID implements pdu.PDU interface.
func (p BindTRxResp) CommandID() CommandID {
	return BindTransceiverRespID
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p BindTRxResp) MarshalBinary() ([]byte, error) {
	return cStringOptsRespMarshal(p.SystemID, p.Options)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (p *BindTRxResp) UnmarshalBinary(body []byte) error {
	var err error
	p.SystemID, p.Options, err = cStringOptsRespUnmarshal(body)
	return err
}

func marshalBind(b bindParams) ([]byte, error) {
	if err := validate.SystemID(b.SystemID); err != nil {
		return nil, &PDUError{Op: "encode bind", Err: err}
	}
	if err := validate.Password(b.Password); err != nil {
		return nil, &PDUError{Op: "encode bind", Err: err}
	}
	out := append([]byte(b.SystemID), 0)
	out = append(out, append([]byte(b.Password), 0)...)
	out = append(out, append([]byte(b.SystemType), 0)...)
	out = append(out, byte(b.InterfaceVersion), byte(b.AddrTon), byte(b.AddrNpi))
	out = append(out, append([]byte(b.AddressRange), 0)...)
	return out, nil
}

func unmarshalBind(body []byte) (bindParams, error) {
	var b bindParams
	if len(body) < 7 {
		return b, fmt.Errorf("smpp/pdu: bind body too short: %d", len(body))
	}
	buf := newBuffer(body)
	res, err := buf.ReadCString(16)
	if err != nil {
		return b, fmt.Errorf("smpp/pdu: decoding system_id %s", err)
	}
	b.SystemID = string(res)
	res, err = buf.ReadCString(9)
	if err != nil {
		return b, fmt.Errorf("smpp/pdu: decoding password %s", err)
	}
	b.Password = string(res)
	res, err = buf.ReadCString(13)
	if err != nil {
		return b, fmt.Errorf("smpp/pdu: decoding system_type %s", err)
	}
	b.SystemType = string(res)
	ver, err := buf.ReadByte()
	if err != nil {
		return b, fmt.Errorf("smpp/pdu: decoding interface_version %s", err)
	}
	b.InterfaceVersion = int(ver)
	ton, err := buf.ReadByte()
	if err != nil {
		return b, fmt.Errorf("smpp/pdu: decoding addr_ton %s", err)
	}
	b.AddrTon = int(ton)
	npi, err := buf.ReadByte()
	if err != nil {
		return b, fmt.Errorf("smpp/pdu: decoding addr_npi %s", err)
	}
	b.AddrNpi = int(npi)
	res, err = buf.ReadCString(41)
	if err != nil {
		return b, fmt.Errorf("smpp/pdu: decoding addr_range %s", err)
	}
	b.AddressRange = string(res)
	return b, nil
}
