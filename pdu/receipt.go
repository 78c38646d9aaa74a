package pdu

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DeliveryReceipt carries the text short_message body of a deliver_sm sent
// to report the fate of a previously submitted message:
//
//	id:IIIIIIIIII sub:SSS dlvrd:DDD submit date:YYMMDDhhmm done date:YYMMDDhhmm stat:DDDDDDD err:E text: ...
type DeliveryReceipt struct {
	Id         string
	Sub        string
	Dlvrd      string
	SubmitDate time.Time
	DoneDate   time.Time
	Stat       DelStat
	Err        string
	Text       string
}

// DelStat is the stat: field of a DeliveryReceipt.
type DelStat string

const (
	DelStatEnRoute       DelStat = "ENROUTE"
	DelStatDelivered     DelStat = "DELIVRD"
	DelStatExpired       DelStat = "EXPIRED"
	DelStatDeleted       DelStat = "DELETED"
	DelStatUndeliverable DelStat = "UNDELIV"
	DelStatAccepted      DelStat = "ACCEPTD"
	DelStatUnknown       DelStat = "UNKNOWN"
	DelStatRejected      DelStat = "REJECTD"
)

// DelStatMap translates the message_state TLV/field value carried alongside
// some receipts into its text DelStat.
var DelStatMap = map[uint8]DelStat{
	1: DelStatEnRoute,
	2: DelStatDelivered,
	3: DelStatExpired,
	4: DelStatDeleted,
	5: DelStatUndeliverable,
	6: DelStatAccepted,
	7: DelStatUnknown,
	8: DelStatRejected,
}

var knownDelStats = func() map[DelStat]bool {
	m := make(map[DelStat]bool, len(DelStatMap))
	for _, s := range DelStatMap {
		m[s] = true
	}
	return m
}()

func (dr *DeliveryReceipt) String() string {
	return fmt.Sprintf(
		"id:%s sub:%s dlvrd:%s submit date:%s done date:%s stat:%s err:%s text:%s",
		dr.Id, dr.Sub, dr.Dlvrd, dr.SubmitDate.Format(RecDateLayout), dr.DoneDate.Format(RecDateLayout), dr.Stat, dr.Err, dr.Text,
	)
}

var receiptField = regexp.MustCompile(`(\w+ ?\w+)+:([\w\-]+)`)

// RecDateLayout is the YYMMDDhhmm layout most receipts use for submit/done dates.
var RecDateLayout = "0601021504"

// SecRecDateLayout adds seconds, used by some SMSCs.
var SecRecDateLayout = "060102150405"

var dateLayouts = []string{"20060102150405", RecDateLayout, SecRecDateLayout}

// ParseDateTime tries each receipt date layout in turn against value,
// returning the first one that parses cleanly.
func ParseDateTime(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("smpp: unable to parse receipt date %q", value)
}

var errMalformedReceipt = errors.New("smpp: invalid receipt format")

// receiptSetters maps a receipt field label to the DeliveryReceipt field it
// populates. Dispatching by label rather than by the match's position
// tolerates SMSCs that reorder fields; a receipt that omits a required
// field is still rejected by ParseDeliveryReceipt.
var receiptSetters = map[string]func(*DeliveryReceipt, string) error{
	"id": func(dr *DeliveryReceipt, v string) error {
		dr.Id = v
		return nil
	},
	"sub": func(dr *DeliveryReceipt, v string) error {
		dr.Sub = v
		return nil
	},
	"dlvrd": func(dr *DeliveryReceipt, v string) error {
		dr.Dlvrd = v
		return nil
	},
	"submit date": func(dr *DeliveryReceipt, v string) error {
		t, err := ParseDateTime(v)
		if err != nil {
			return err
		}
		dr.SubmitDate = t
		return nil
	},
	"done date": func(dr *DeliveryReceipt, v string) error {
		t, err := ParseDateTime(v)
		if err != nil {
			return err
		}
		dr.DoneDate = t
		return nil
	},
	"stat": func(dr *DeliveryReceipt, v string) error {
		stat := DelStat(v)
		if !knownDelStats[stat] {
			return fmt.Errorf("smpp: unknown receipt stat %q", v)
		}
		dr.Stat = stat
		return nil
	},
	"err": func(dr *DeliveryReceipt, v string) error {
		dr.Err = v
		return nil
	},
}

// requiredReceiptFields lists every field a well-formed receipt must carry;
// ParseDeliveryReceipt rejects a receipt missing any of them.
var requiredReceiptFields = []string{"id", "sub", "dlvrd", "submit date", "done date", "stat", "err"}

// ParseDeliveryReceipt parses the delivery receipt text format defined in
// the SMPP v3.4 specification, appendix B.
func ParseDeliveryReceipt(sm string) (*DeliveryReceipt, error) {
	i := strings.Index(sm, "text:")
	if i == -1 {
		i = strings.Index(sm, "Text:")
	}
	if i == -1 {
		return nil, errMalformedReceipt
	}
	delRec := DeliveryReceipt{}
	seen := make(map[string]bool, len(requiredReceiptFields))
	for _, m := range receiptField.FindAllStringSubmatch(sm[:i], -1) {
		if len(m) != 3 {
			return nil, errMalformedReceipt
		}
		set, ok := receiptSetters[m[1]]
		if !ok {
			return nil, fmt.Errorf("smpp: unrecognized receipt field %q", m[1])
		}
		if err := set(&delRec, m[2]); err != nil {
			return nil, err
		}
		seen[m[1]] = true
	}
	for _, field := range requiredReceiptFields {
		if !seen[field] {
			return nil, fmt.Errorf("smpp: receipt missing required field %q", field)
		}
	}
	delRec.Text = sm[i+len("text:"):]
	return &delRec, nil
}
