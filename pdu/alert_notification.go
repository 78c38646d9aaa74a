package pdu

import (
	"fmt"
)

// AlertNotification is sent by the SMSC to an ESME bound as receiver or
// transceiver to advise that a mobile subscriber has become available,
// e.g. after being out of coverage. It carries no response.
type AlertNotification struct {
	SourceAddrTon int
	SourceAddrNpi int
	SourceAddr    string
	EsmeAddrTon   int
	EsmeAddrNpi   int
	EsmeAddr      string
	Options       *Options
}

// CommandID implements pdu.PDU interface.
func (p AlertNotification) CommandID() CommandID {
	return AlertNotificationID
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p AlertNotification) MarshalBinary() ([]byte, error) {
	out := writeTonNpiAddr(p.SourceAddrTon, p.SourceAddrNpi, p.SourceAddr)
	out = append(out, writeTonNpiAddr(p.EsmeAddrTon, p.EsmeAddrNpi, p.EsmeAddr)...)
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
func (p *AlertNotification) UnmarshalBinary(body []byte) error {
	if len(body) < 4 {
		return fmt.Errorf("smpp/pdu: alert_notification body too short: %d", len(body))
	}
	buf := newBuffer(body)
	var err error
	p.SourceAddrTon, p.SourceAddrNpi, p.SourceAddr, err = readTonNpiAddr(buf, 65, "source_addr")
	if err != nil {
		return err
	}
	p.EsmeAddrTon, p.EsmeAddrNpi, p.EsmeAddr, err = readTonNpiAddr(buf, 65, "esme_addr")
	if err != nil {
		return err
	}
	if buf.Len() == 0 {
		return nil
	}
	p.Options = NewOptions()
	return p.Options.UnmarshalBinary(buf.Bytes())
}
