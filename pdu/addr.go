package pdu

import "fmt"

// writeTonNpiAddr encodes the ton/npi/addr triple shared by every source or
// destination address field in the message-carrying PDUs: a type-of-number
// byte, a numbering-plan-indicator byte, then a NUL-terminated address.
func writeTonNpiAddr(ton, npi int, addr string) []byte {
	out := []byte{byte(ton), byte(npi)}
	return append(out, append([]byte(addr), 0)...)
}

// readTonNpiAddr decodes the triple writeTonNpiAddr produces. field names
// the address in error messages (source_addr, dest_addr, esme_addr, ...).
func readTonNpiAddr(buf *pduReader, addrLimit int, field string) (ton, npi int, addr string, err error) {
	b, err := buf.ReadByte()
	if err != nil {
		return 0, 0, "", fmt.Errorf("smpp/pdu: decoding %s_ton %s", field, err)
	}
	ton = int(b)
	b, err = buf.ReadByte()
	if err != nil {
		return 0, 0, "", fmt.Errorf("smpp/pdu: decoding %s_npi %s", field, err)
	}
	npi = int(b)
	res, err := buf.ReadCString(addrLimit)
	if err != nil {
		return 0, 0, "", fmt.Errorf("smpp/pdu: decoding %s %s", field, err)
	}
	return ton, npi, string(res), nil
}
