package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	EventLoanRequested   = "loan.requested"
	EventLoanFunded      = "loan.funded"
	EventLoanFullyFunded = "loan.fully_funded"
)

// LedgerEvent is emitted after a ledger mutation commits. Events of one loan
// share a partition key.
type LedgerEvent struct {
	Type         string          `json:"type"`
	LoanID       string          `json:"loan_id"`
	BorrowerID   string          `json:"borrower_id"`
	LenderID     string          `json:"lender_id,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	FundedAmount decimal.Decimal `json:"funded_amount"`
	Status       string          `json:"status"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

func (e LedgerEvent) GetId() string { return e.LoanID }

type Publisher interface {
	Publish(ctx context.Context, e LedgerEvent) error
}

// NewSyncProducer dials the brokers with acks from all in-sync replicas.
func NewSyncProducer(brokers []string, clientID string) (sarama.SyncProducer, error) {
	cfg := sarama.NewConfig()
	cfg.ClientID = clientID
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	return sarama.NewSyncProducer(brokers, cfg)
}

type LedgerProducer struct {
	Producer sarama.SyncProducer
	Topic    string
	Log      *logrus.Logger
}

func NewLedgerProducer(p sarama.SyncProducer, topic string, log *logrus.Logger) *LedgerProducer {
	return &LedgerProducer{Producer: p, Topic: topic, Log: log}
}

func (p *LedgerProducer) Publish(ctx context.Context, e LedgerEvent) error {
	value, err := json.Marshal(e)
	if err != nil {
		p.Log.WithError(err).Error("gateway/messaging: failed to marshal event")
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: p.Topic,
		Key:   sarama.StringEncoder(e.GetId()),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(e.Type)},
		},
	}
	partition, offset, err := p.Producer.SendMessage(msg)
	if err != nil {
		p.Log.WithError(err).WithField("event", e.Type).Error("gateway/messaging: send failed")
		return err
	}
	p.Log.WithFields(logrus.Fields{
		"event":     e.Type,
		"loan_id":   e.LoanID,
		"partition": partition,
		"offset":    offset,
	}).Debug("gateway/messaging: event sent")
	return nil
}

func (p *LedgerProducer) Close() error { return p.Producer.Close() }

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct{ Log *logrus.Logger }

func (n NoopPublisher) Publish(ctx context.Context, e LedgerEvent) error {
	if n.Log != nil {
		n.Log.WithFields(logrus.Fields{"event": e.Type, "loan_id": e.LoanID}).Debug("gateway/messaging: publisher disabled")
	}
	return nil
}
