package serializer

import "strings"

// Message keys understood by field validation.
const (
	MsgRequired      = "required"
	MsgNull          = "null"
	MsgBlank         = "blank"
	MsgInvalid       = "invalid"
	MsgInvalidChoice = "invalid_choice"
	MsgDoesNotExist  = "does_not_exist"
	MsgIncorrectType = "incorrect_type"
	MsgNotAList      = "not_a_list"
	MsgEmpty         = "empty"
)

var defaultMessages = map[string]string{
	MsgRequired:      "This field is required.",
	MsgNull:          "This field may not be null.",
	MsgBlank:         "This field may not be blank.",
	MsgInvalid:       "Enter a valid value.",
	MsgInvalidChoice: `"{input}" is not a valid choice.`,
	MsgDoesNotExist:  `Invalid pk "{pk_value}" - object does not exist.`,
	MsgIncorrectType: "Incorrect type. Expected pk value, received {data_type}.",
	MsgNotAList:      `Expected a list of items but got type "{input_type}".`,
	MsgEmpty:         "This list may not be empty.",
}

// RelationMessages is applied to single relations and to the per-item
// validator of many relations.
var RelationMessages = map[string]string{
	MsgRequired:      "Please select a value",
	MsgNull:          "Please select a value",
	MsgDoesNotExist:  "The selected value does not exist",
	MsgIncorrectType: "Please select a valid value",
}

// ManyRelationMessages is applied to the outer list of many relations.
var ManyRelationMessages = map[string]string{
	MsgRequired: "Please select at least one value",
	MsgNull:     "Please select at least one value",
	MsgNotAList: "Please select a list of values",
	MsgEmpty:    "Please select at least one value",
}

// NormalizeMessages rewrites the default error tables of fields into
// user-facing text. It only touches message tables, never validation rules,
// and runs once when a serializer is built.
func NormalizeMessages(fields []*FormField) {
	for _, f := range fields {
		switch f.Schema.Kind {
		case KindRelationMany:
			f.setMessages(ManyRelationMessages)
			if f.Child != nil {
				f.Child.setMessages(RelationMessages)
			}
		case KindRelation:
			f.setMessages(RelationMessages)
		default:
			msg := "Please enter your " + Humanize(f.Name)
			f.setMessages(map[string]string{
				MsgRequired: msg,
				MsgBlank:    msg,
				MsgNull:     msg,
			})
		}
	}
}

func (f *FormField) setMessages(m map[string]string) {
	if f.Messages == nil {
		f.Messages = make(map[string]string, len(defaultMessages))
	}
	for k, v := range m {
		f.Messages[k] = v
	}
}

// message renders key with {placeholder} substitutions.
func (f *FormField) message(key string, params ...string) string {
	msg, ok := f.Messages[key]
	if !ok {
		msg = defaultMessages[key]
	}
	if len(params) > 1 {
		msg = strings.NewReplacer(params...).Replace(msg)
	}
	return msg
}
