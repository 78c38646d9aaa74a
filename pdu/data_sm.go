package pdu

import (
	"fmt"
)

// DataSm carries the abbreviated message header used for interactive /
// data-mode message transfer; unlike submit_sm and deliver_sm it has no
// scheduling or priority fields and no inline short_message — message
// content travels in the message_payload optional parameter.
type DataSm struct {
	ServiceType        string
	SourceAddrTon      int
	SourceAddrNpi      int
	SourceAddr         string
	DestAddrTon        int
	DestAddrNpi        int
	DestinationAddr    string
	EsmClass           EsmClass
	RegisteredDelivery RegisteredDelivery
	DataCoding         int
	Options            *Options
}

// CommandID implements pdu.PDU interface.
func (p DataSm) CommandID() CommandID {
	return DataSmID
}

// Response creates new DataSmResp.
func (p DataSm) Response(msgID string) *DataSmResp {
	return &DataSmResp{
		MessageID: msgID,
	}
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p DataSm) MarshalBinary() ([]byte, error) {
	out := append([]byte(p.ServiceType), 0)
	out = append(out, writeTonNpiAddr(p.SourceAddrTon, p.SourceAddrNpi, p.SourceAddr)...)
	out = append(out, writeTonNpiAddr(p.DestAddrTon, p.DestAddrNpi, p.DestinationAddr)...)
	out = append(out, p.EsmClass.Byte(), p.RegisteredDelivery.Byte(), byte(p.DataCoding))
	if p.Options == nil {
		return out, nil
	}
	opts, err := p.Options.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return append(out, opts...), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (p *DataSm) UnmarshalBinary(body []byte) error {
	if len(body) < 6 {
		return fmt.Errorf("smpp/pdu: data_sm body too short: %d", len(body))
	}
	buf := newBuffer(body)
	res, err := buf.ReadCString(6)
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding service_type %s", err)
	}
	p.ServiceType = string(res)
	p.SourceAddrTon, p.SourceAddrNpi, p.SourceAddr, err = readTonNpiAddr(buf, 21, "source_addr")
	if err != nil {
		return err
	}
	p.DestAddrTon, p.DestAddrNpi, p.DestinationAddr, err = readTonNpiAddr(buf, 21, "dest_addr")
	if err != nil {
		return err
	}
	b, err := buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding esm_class %s", err)
	}
	p.EsmClass = ParseEsmClass(b)
	b, err = buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding registered_delivery %s", err)
	}
	p.RegisteredDelivery = ParseRegisteredDelivery(b)
	b, err = buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding data_coding %s", err)
	}
	p.DataCoding = int(b)
	if buf.Len() == 0 {
		return nil
	}
	p.Options = NewOptions()
	return p.Options.UnmarshalBinary(buf.Bytes())
}

// DataSmResp holds the response to a data_sm PDU.
type DataSmResp struct {
	MessageID string
	Options   *Options
}

// CommandID implements pdu.PDU interface.
func (p DataSmResp) CommandID() CommandID {
	return DataSmRespID
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p DataSmResp) MarshalBinary() ([]byte, error) {
	return cStringOptsRespMarshal(p.MessageID, p.Options)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (p *DataSmResp) UnmarshalBinary(body []byte) error {
	var err error
	p.MessageID, p.Options, err = cStringOptsRespUnmarshal(body)
	return err
}
