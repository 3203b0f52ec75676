package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewWithWriter_JSONWithServiceField(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("p2p-lending", "debug", &buf)

	l.WithField("loan_id", "abc").Info("funded")

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("not json: %v (%s)", err, buf.String())
	}
	if got["service"] != "p2p-lending" || got["loan_id"] != "abc" || got["msg"] != "funded" {
		t.Fatalf("unexpected entry: %v", got)
	}
	if l.GetLevel() != logrus.DebugLevel {
		t.Fatalf("level = %v, want debug", l.GetLevel())
	}
}

func TestNewWithWriter_UnknownLevelFallsBackToInfo(t *testing.T) {
	l := NewWithWriter("", "loud", &bytes.Buffer{})
	if l.GetLevel() != logrus.InfoLevel {
		t.Fatalf("level = %v, want info", l.GetLevel())
	}
}
