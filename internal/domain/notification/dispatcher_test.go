package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unicef/etools-sub003/internal/domain/engagement"
	"github.com/unicef/etools-sub003/internal/domain/shared"
)

type recordingSender struct {
	mu       sync.Mutex
	messages []Message
	err      error
}

func (s *recordingSender) Send(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, msg)
	return nil
}

type mapStore struct {
	mu   sync.Mutex
	seen map[Key]bool
}

func newMapStore() *mapStore { return &mapStore{seen: make(map[Key]bool)} }

func (s *mapStore) MarkSent(_ context.Context, key Key, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[key] {
		return true, nil
	}
	s.seen[key] = true
	return false, nil
}

func submittedEvent() shared.DomainEvent {
	base := shared.NewBaseDomainEvent(engagement.EventSubmitted, "engagement", uuid.New(), uuid.New())
	return &base
}

func TestBuild(t *testing.T) {
	event := submittedEvent()

	t.Run("one message per recipient", func(t *testing.T) {
		msgs := Build(event, []string{"a@unicef.org", "b@unicef.org"}, map[string]any{"partner": "ACME"})
		require.Len(t, msgs, 2)
		assert.Equal(t, TemplateReportedByAuditor, msgs[0].TemplateID)
		assert.Equal(t, event.AggregateID(), msgs[0].SubjectID)
		assert.Equal(t, "ACME", msgs[0].Context["partner"])
	})

	t.Run("blank recipients skipped", func(t *testing.T) {
		msgs := Build(event, []string{"", "a@unicef.org"}, nil)
		assert.Len(t, msgs, 1)
	})

	t.Run("unrouted events produce nothing", func(t *testing.T) {
		base := shared.NewBaseDomainEvent("engagement.created", "engagement", uuid.New(), uuid.New())
		assert.Empty(t, Build(&base, []string{"a@unicef.org"}, nil))
	})

	t.Run("no recipients produce nothing", func(t *testing.T) {
		assert.Empty(t, Build(event, nil, nil))
	})
}

func TestDispatch_SuppressesDuplicates(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, newMapStore(), time.Minute, zap.NewNop())
	event := submittedEvent()
	recipients := []string{"fp@unicef.org"}

	d.Dispatch(context.Background(), event, recipients, nil)
	d.Dispatch(context.Background(), event, recipients, nil)

	assert.Len(t, sender.messages, 1)
}

func TestDispatch_DistinctRecipientsBothDelivered(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, newMapStore(), time.Minute, zap.NewNop())

	d.Dispatch(context.Background(), submittedEvent(), []string{"a@unicef.org", "b@unicef.org"}, nil)

	assert.Len(t, sender.messages, 2)
}

func TestDispatch_SendFailuresAreSwallowed(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	d := NewDispatcher(sender, newMapStore(), time.Minute, zap.NewNop())

	assert.NotPanics(t, func() {
		d.Dispatch(context.Background(), submittedEvent(), []string{"a@unicef.org"}, nil)
	})
}

func TestMessageKey(t *testing.T) {
	subjectID := uuid.New()
	a := Message{Recipient: "x@unicef.org", TemplateID: TemplateWastage, SubjectID: subjectID}
	b := Message{Recipient: "x@unicef.org", TemplateID: TemplateWastage, SubjectID: subjectID,
		Context: map[string]any{"ignored": true}}

	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), Message{Recipient: "y@unicef.org", TemplateID: TemplateWastage, SubjectID: subjectID}.Key())
}
