package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"golang.org/x/time/rate"

	"github.com/fixitnow/fixitnow/types"
)

const writeTimeout = time.Second * 10

// session is the per-connection state: the principal once a connect or
// subscribe frame authenticated, the active queue subscriptions, and a
// send limiter.
type session struct {
	conn    *websocket.Conn
	limiter *rate.Limiter

	wmu sync.Mutex

	mu         sync.Mutex
	user       *types.User
	unsubs     []func() error
	subscribed map[string]bool
}

func newSession(conn *websocket.Conn, sendsPerMinute int) *session {
	return &session{
		conn:       conn,
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(sendsPerMinute)), sendsPerMinute),
		subscribed: map[string]bool{},
	}
}

func (s *session) principal() (types.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return types.User{}, false
	}
	return *s.user, true
}

// setPrincipal attaches the user to the session. The first
// authenticated frame wins; later credentials cannot swap identities.
func (s *session) setPrincipal(usr types.User) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user != nil {
		return false
	}
	s.user = &usr
	return true
}

func (s *session) addSubscription(destination string, unsub func() error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subscribed[destination] {
		return false
	}
	s.subscribed[destination] = true
	s.unsubs = append(s.unsubs, unsub)
	return true
}

func (s *session) unsubscribeAll() []error {
	s.mu.Lock()
	unsubs := s.unsubs
	s.unsubs = nil
	s.subscribed = map[string]bool{}
	s.mu.Unlock()

	var errs []error
	for _, unsub := range unsubs {
		if err := unsub(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// writeFrame serializes writes so broker deliveries and read-loop
// replies never interleave on the wire.
func (s *session) writeFrame(ctx context.Context, f Frame) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	return wsjson.Write(ctx, s.conn, f)
}
