package fakesessionrepo

import (
	"sync"

	"github.com/ledgrio/ledgrio-go/session"
)

var _ session.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo is an in-memory session.Repo for tests. Error fields, when
// set, are returned by the corresponding operation.
type FakeSessionRepo struct {
	stored *session.Session
	lock   sync.RWMutex

	LoadErr  error
	SaveErr  error
	ClearErr error

	SaveCalls  int
	ClearCalls int
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{}
}

func (sr *FakeSessionRepo) Load() (*session.Session, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	if sr.LoadErr != nil {
		return nil, sr.LoadErr
	}
	if sr.stored == nil {
		return nil, nil
	}
	sess := *sr.stored
	return &sess, nil
}

func (sr *FakeSessionRepo) Save(sess *session.Session) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	sr.SaveCalls++
	if sr.SaveErr != nil {
		return sr.SaveErr
	}
	copied := *sess
	sr.stored = &copied
	return nil
}

func (sr *FakeSessionRepo) Clear() error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	sr.ClearCalls++
	if sr.ClearErr != nil {
		return sr.ClearErr
	}
	sr.stored = nil
	return nil
}

// Seed stores a session directly, bypassing error injection.
func (sr *FakeSessionRepo) Seed(sess *session.Session) {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	copied := *sess
	sr.stored = &copied
}
