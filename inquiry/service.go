// Package inquiry accepts quote requests from the public contact form,
// stores them and announces them to the mailer.
package inquiry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tourdesk/accessor"
	"tourdesk/metrics"
	"tourdesk/models"
	"tourdesk/mq"
)

var ErrNotStored = errors.New("inquiry could not be stored")

type Service struct {
	acc        *accessor.Accessor
	collection string
	pub        mq.Publisher
	log        *zap.Logger
	now        func() time.Time
}

func NewService(acc *accessor.Accessor, collection string, pub mq.Publisher, log *zap.Logger) *Service {
	if pub == nil {
		pub = mq.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{acc: acc, collection: collection, pub: pub, log: log.Named("inquiry"), now: time.Now}
}

// Submit validates sub, stores it with status new and a server timestamp,
// then publishes inquiry.created. A publish failure does not fail the call.
func (s *Service) Submit(ctx context.Context, sub Submission) (models.Inquiry, error) {
	if err := Validate(&sub); err != nil {
		metrics.Inquiries.WithLabelValues("invalid").Inc()
		return models.Inquiry{}, err
	}

	inq := models.Inquiry{
		FullName:    sub.FullName,
		Email:       sub.Email,
		Phone:       sub.Phone,
		Destination: sub.Destination,
		TravelDates: sub.TravelDates,
		TravelTime:  sub.TravelTime,
		Category:    sub.Category,
		Company:     sub.Company,
		Message:     sub.Message,
		Status:      models.InquiryNew,
		CreatedAt:   s.now().UTC(),
	}
	res := accessor.Add(ctx, s.acc, s.collection, inq)
	if res.Err != nil {
		metrics.Inquiries.WithLabelValues("error").Inc()
		return models.Inquiry{}, fmt.Errorf("%w: %w", ErrNotStored, res.Err)
	}
	inq.ID = res.Value
	metrics.Inquiries.WithLabelValues("stored").Inc()

	mq.Emit(ctx, s.pub, s.log, mq.Event{
		Type:       mq.InquiryCreated,
		Collection: s.collection,
		ID:         inq.ID,
		Payload:    inq,
	})
	s.log.Info("inquiry stored", zap.String("id", inq.ID), zap.String("destination", inq.Destination))
	return inq, nil
}
