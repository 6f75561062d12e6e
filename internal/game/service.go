package game

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/models"
)

// Answerer produces an in-character answer without a human in the loop. The
// language generation itself is an external concern; the core only consumes
// the result.
type Answerer interface {
	AutomatedAnswer(ctx context.Context, character, question, caseRef string) (string, error)
}

// deflectionAnswer keeps the exactly-one-answer guarantee even when the
// automated answerer is unreachable.
const deflectionAnswer = "I'm sorry, my mind has gone quite blank. Ask me again in a moment."

// answerFetchTimeout bounds how long the automated answerer may take.
const answerFetchTimeout = 30 * time.Second

const defaultAnswerTimeout = 60 * time.Second

type Options struct {
	// AnswerTimeout is the deadline given to the human controller before the
	// timeout fallback substitutes an automated answer.
	AnswerTimeout time.Duration
	// RequireIdentity rejects joinRole and quick match from connections
	// without a verified identity.
	RequireIdentity bool
}

// Service is the coordination core: it routes participant operations to room
// state, owns the question/answer correlation including the timeout
// fallback, and runs the matchmaker.
type Service struct {
	logger          *slog.Logger
	registry        *Registry
	answerer        Answerer
	matchmaker      *Matchmaker
	answerTimeout   time.Duration
	requireIdentity bool

	mu          sync.Mutex
	roomsByConn map[string]*Room
}

func NewService(logger *slog.Logger, registry *Registry, answerer Answerer, opts Options) *Service {
	if opts.AnswerTimeout <= 0 {
		opts.AnswerTimeout = defaultAnswerTimeout
	}
	s := &Service{
		logger:          logger.With("source", "GameService"),
		registry:        registry,
		answerer:        answerer,
		answerTimeout:   opts.AnswerTimeout,
		requireIdentity: opts.RequireIdentity,
		roomsByConn:     make(map[string]*Room),
	}
	s.matchmaker = newMatchmaker(logger, s.completeMatch)
	return s
}

// Run starts the matchmaker loop and blocks until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	s.matchmaker.Run(ctx)
}

// Registry exposes room listing and creation to the read-only HTTP surface.
func (s *Service) Registry() *Registry {
	return s.registry
}

// CreateRoom creates a room on behalf of conn and reports it back. The
// creator still has to join a role explicitly.
func (s *Service) CreateRoom(conn Conn, preferredCode, displayName string) error {
	room, err := s.registry.CreateRoom(preferredCode, displayName)
	if err != nil {
		return err
	}
	conn.RoomCreated(room.Snapshot())
	return nil
}

// Enqueue puts conn into the quick-match queue for role.
func (s *Service) Enqueue(conn Conn, role models.Role) error {
	if s.requireIdentity && conn.Identity() == "" {
		return ErrUnauthorized
	}
	return s.matchmaker.Enqueue(conn, role)
}

// JoinRole binds conn to role in the room identified by code. An empty role
// joins as a silent observer.
func (s *Service) JoinRole(conn Conn, code string, role models.Role) error {
	if s.requireIdentity && conn.Identity() == "" {
		return ErrUnauthorized
	}
	room, err := s.registry.Get(code)
	if err != nil {
		return err
	}
	if previous := s.takeRoom(conn.ID()); previous != nil && previous != room {
		s.releaseBinding(previous, conn)
	}
	orphaned, err := room.join(conn, role)
	if err != nil {
		return err
	}
	s.registerConn(conn.ID(), room)
	for _, pq := range orphaned {
		go s.expireAndFallback(room, pq.CorrelationID)
	}
	switch role {
	case models.RoleDetective:
		room.systemNotice("The detective has entered the room.", conn.ID())
	case models.RoleCharacterController:
		// Deliberately vague: nothing here may hint at which suspect is or
		// will be human-controlled.
		room.systemNotice("The character controller has joined the room.", conn.ID())
	default:
		room.systemNotice("An observer is now watching the investigation.", conn.ID())
	}
	return nil
}

// LockCharacter claims character as the controller's persona for the rest of
// the room's lifetime. The choice is confirmed to the controller alone;
// everyone else only learns that a lock happened.
func (s *Service) LockCharacter(conn Conn, character string) error {
	room := s.roomOf(conn.ID())
	if room == nil {
		return ErrNotInRoom
	}
	if err := room.lock(conn, character); err != nil {
		return err
	}
	conn.CharacterLocked(character)
	room.systemNotice("The character controller has locked in a suspect.", conn.ID())
	s.logger.Debug("character locked", "room", room.Code())
	return nil
}

// Ask routes the detective's question to the suspect. A human-controlled,
// live suspect gets the question with a response deadline; everyone else is
// answered by the automated answerer. Either way exactly one answer event
// comes back to the room.
func (s *Service) Ask(conn Conn, character, question string) error {
	room := s.roomOf(conn.ID())
	if room == nil {
		return ErrNotInRoom
	}
	correlationID := uuid.New().String()
	deadline := time.Now().Add(s.answerTimeout)
	pq, human, err := room.beginQuestion(conn, correlationID, character, question, deadline)
	if err != nil {
		return err
	}
	if human {
		timer := time.AfterFunc(time.Until(deadline), func() {
			s.expireAndFallback(room, correlationID)
		})
		room.armTimer(correlationID, timer)
		s.logger.Debug("question routed to controller",
			"room", room.Code(), "correlationId", correlationID)
		return nil
	}
	go s.deliverAutomated(room, pq)
	return nil
}

// Answer records the controller's answer for a pending question. First
// writer wins: a fallback that already fired makes this return Expired.
func (s *Service) Answer(conn Conn, correlationID, answer string) error {
	room := s.roomOf(conn.ID())
	if room == nil {
		return ErrNotInRoom
	}
	pq, err := room.resolveHuman(conn, correlationID)
	if err != nil {
		return err
	}
	s.logger.Debug("human answer recorded",
		"room", room.Code(), "correlationId", correlationID)
	room.deliverAnswer(pq.Character, answer)
	return nil
}

// Ack records a delivery acknowledgment from the controller's client. It is
// advisory telemetry only; the deadline timer remains the sole authority for
// triggering the fallback.
func (s *Service) Ack(conn Conn, correlationID string) {
	room := s.roomOf(conn.ID())
	code := ""
	if room != nil {
		code = room.Code()
	}
	s.logger.Debug("question delivery acknowledged",
		"room", code, "correlationId", correlationID, "connection", conn.ID())
}

// Disconnect releases conn's bindings. The room, its character lock and its
// case data survive; orphaned pending questions take the fallback path
// immediately instead of stalling the detective until the deadline.
func (s *Service) Disconnect(conn Conn) {
	s.matchmaker.Cancel(conn.ID())
	room := s.takeRoom(conn.ID())
	if room == nil {
		return
	}
	s.releaseBinding(room, conn)
}

// releaseBinding frees conn's binding in room, announces the departure, and
// routes orphaned questions to the fallback path right away instead of
// letting their deadlines run out. Shared by disconnects and room switches.
func (s *Service) releaseBinding(room *Room, conn Conn) {
	role, orphaned := room.release(conn)
	switch role {
	case models.RoleDetective:
		room.systemNotice("The detective has left the room.", conn.ID())
	case models.RoleCharacterController:
		room.systemNotice("The character controller has left the room.", conn.ID())
	}
	for _, pq := range orphaned {
		go s.expireAndFallback(room, pq.CorrelationID)
	}
}

// completeMatch is the matchmaker's pairing callback: it atomically creates a
// fresh room, binds both roles, and notifies both participants with the room
// code.
func (s *Service) completeMatch(detective, controller Conn) {
	room, err := s.registry.CreateRoom("", "")
	if err != nil {
		s.logger.Error("quick match room creation failed", errors.SlogError(err))
		detective.Error("Internal", "could not create a room, please retry")
		controller.Error("Internal", "could not create a room, please retry")
		return
	}
	if _, err = room.join(detective, models.RoleDetective); err != nil {
		s.logger.Error("bind detective after match", errors.SlogError(err))
		return
	}
	if _, err = room.join(controller, models.RoleCharacterController); err != nil {
		s.logger.Error("bind controller after match", errors.SlogError(err))
		return
	}
	s.registerConn(detective.ID(), room)
	s.registerConn(controller.ID(), room)
	snapshot := room.Snapshot()
	detective.Matched(snapshot)
	controller.Matched(snapshot)
	room.systemNotice("Quick match found. The investigation begins.", "")
}

// expireAndFallback is the timeout path: it consumes the pending question (if
// a human answer has not already done so) and substitutes an automated
// answer of identical event shape.
func (s *Service) expireAndFallback(room *Room, correlationID string) {
	pq := room.takeExpired(correlationID)
	if pq == nil {
		return
	}
	s.logger.Debug("answer deadline elapsed, falling back",
		"room", room.Code(), "correlationId", correlationID)
	answer := s.fetchAutomated(pq.Character, pq.Question, room.CaseRef())
	room.deliverAnswer(pq.Character, answer)
}

// deliverAutomated answers questions to suspects that are not
// human-controlled. The in-flight marker stays in place during the fetch so
// repeat questions to the same suspect get QuestionInFlight.
func (s *Service) deliverAutomated(room *Room, pq *pendingQuestion) {
	answer := s.fetchAutomated(pq.Character, pq.Question, room.CaseRef())
	if room.takeAutomated(pq.CorrelationID) == nil {
		// The room closed while we were fetching.
		return
	}
	room.deliverAnswer(pq.Character, answer)
}

func (s *Service) fetchAutomated(character, question, caseRef string) string {
	ctx, cancel := context.WithTimeout(context.Background(), answerFetchTimeout)
	defer cancel()
	answer, err := s.answerer.AutomatedAnswer(ctx, character, question, caseRef)
	if err != nil {
		s.logger.Error("automated answer failed", errors.SlogError(err),
			slog.String("character", character))
		return deflectionAnswer
	}
	return answer
}

func (s *Service) registerConn(connectionID string, room *Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomsByConn[connectionID] = room
}

func (s *Service) roomOf(connectionID string) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomsByConn[connectionID]
}

func (s *Service) takeRoom(connectionID string) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	room := s.roomsByConn[connectionID]
	delete(s.roomsByConn, connectionID)
	return room
}
