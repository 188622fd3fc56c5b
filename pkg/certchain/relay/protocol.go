package relay

import (
	"github.com/goccy/go-json"
)

const (
	MethodPublish      = "publish"
	MethodSubscribe    = "subscribe"
	MethodUnsubscribe  = "unsubscribe"
	MethodSubscription = "subscription"
)

// Frame is the single envelope exchanged in both directions. Requests carry
// Method; responses carry the request ID with either Result or Error.
type Frame struct {
	ID      string   `json:"id,omitempty"`
	Method  string   `json:"method,omitempty"`
	Message *Message `json:"message,omitempty"`
	Topic   string   `json:"topic,omitempty"`
	Result  string   `json:"result,omitempty"`
	Error   string   `json:"error,omitempty"`
}

func (f Frame) IsResponse() bool {
	return f.Method == "" && f.ID != ""
}

func ParseFrame(data []byte) (Frame, error) {
	frame := Frame{}
	if err := json.Unmarshal(data, &frame); err != nil {
		return Frame{}, err
	}
	return frame, nil
}
