package pdu

import (
	"bytes"
	"encoding"
	"encoding/binary"
	"errors"

	"github.com/codcod/smpp/validate"
)

var errHeaderTooLarge = errors.New("smpp: pdu length over upper limit")

// PDUError reports a codec or wire-structure violation found while
// encoding or decoding a PDU.
type PDUError struct {
	Op  string
	Err error
}

func (e *PDUError) Error() string { return "smpp/pdu: " + e.Op + ": " + e.Err.Error() }
func (e *PDUError) Unwrap() error { return e.Err }

// Header represents PDU header.
type Header interface {
	encoding.BinaryUnmarshaler
	Length() uint32
	CommandID() CommandID
	Status() Status
	Sequence() uint32
}

// wireHeader mirrors the 16-byte fixed layout of an SMPP PDU header so it
// can be decoded in one binary.Read instead of four manual slice offsets.
type wireHeader struct {
	Length    uint32
	CommandID uint32
	Status    uint32
	Sequence  uint32
}

type header struct {
	length    uint32
	commandID CommandID
	status    Status
	sequence  uint32
}

func (h header) Length() uint32 {
	return h.length
}
func (h header) CommandID() CommandID {
	return h.commandID
}
func (h header) Status() Status {
	return h.status
}
func (h header) Sequence() uint32 {
	return h.sequence
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (h *header) UnmarshalBinary(body []byte) error {
	var w wireHeader
	if err := binary.Read(bytes.NewReader(body), binary.BigEndian, &w); err != nil {
		return &PDUError{Op: "decode header", Err: err}
	}
	if err := validate.PDUStructure(w.Length); err != nil {
		return &PDUError{Op: "decode header", Err: err}
	}
	if w.Length > MaxPDUSize {
		return &PDUError{Op: "decode header", Err: errHeaderTooLarge}
	}
	h.length = w.Length
	h.commandID = CommandID(w.CommandID)
	h.status = Status(w.Status)
	h.sequence = w.Sequence
	return nil
}
