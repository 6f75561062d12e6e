package game

import (
	"sync"
	"time"

	"github.com/myrjola/whodunit/internal/models"
)

// expiredRetention bounds how long resolved correlation ids are remembered
// so that a late human answer can be told apart from a bogus one.
const expiredRetention = 10 * time.Minute

// pendingQuestion tracks one question routed to the human controller (or, for
// the automated path, a short-lived in-flight marker that enforces the
// one-question-per-character rule).
type pendingQuestion struct {
	CorrelationID string
	Character     string
	Question      string
	AskedBy       string
	CreatedAt     time.Time
	Deadline      time.Time

	// automated marks questions that never had a human in the loop.
	automated bool
	// timer fires the timeout fallback. Guarded by the room lock so that
	// arming, stopping and firing cannot interleave.
	timer *time.Timer
}

// Room owns all mutable coordination state for one game session. Every
// mutation happens under mu, so lockCharacter, ask, answer and the timeout
// path serialize against each other by construction.
type Room struct {
	mu sync.Mutex

	code        string
	displayName string
	caseRef     string
	status      models.RoomStatus
	createdAt   time.Time
	lastActive  time.Time

	detective  Conn
	controller Conn
	observers  map[string]Conn

	// lockedCharacter is write-once for the lifetime of the room.
	lockedCharacter string
	lockOwnerConn   string
	lockIdentity    string

	pendingByCharacter   map[string]*pendingQuestion
	pendingByCorrelation map[string]*pendingQuestion
	// expired remembers correlation ids whose fallback already fired so a
	// late human answer gets Expired instead of UnknownCorrelation.
	expired map[string]time.Time
}

func newRoom(code, displayName, caseRef string) *Room {
	now := time.Now()
	return &Room{
		code:                 code,
		displayName:          displayName,
		caseRef:              caseRef,
		status:               models.RoomStatusForming,
		createdAt:            now,
		lastActive:           now,
		observers:            make(map[string]Conn),
		pendingByCharacter:   make(map[string]*pendingQuestion),
		pendingByCorrelation: make(map[string]*pendingQuestion),
		expired:              make(map[string]time.Time),
	}
}

// Code returns the room's natural key in its canonical uppercase form.
func (r *Room) Code() string {
	return r.code
}

// CaseRef returns the opaque reference to the externally owned case data.
func (r *Room) CaseRef() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.caseRef
}

// SetCaseRef points the room at different case data. Used by the authoring
// flow when it seeds a dedicated case for the room.
func (r *Room) SetCaseRef(caseRef string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.caseRef = caseRef
}

// Snapshot returns the participant-facing view of the room.
func (r *Room) Snapshot() models.Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	return models.Room{
		Code:        r.code,
		DisplayName: r.displayName,
		Status:      r.status,
		CaseRef:     r.caseRef,
		CreatedAt:   r.createdAt,
	}
}

// join binds conn to role, or registers it as an observer when role is
// empty. A connection holds at most one binding per room: switching roles
// frees the old one first. It returns the pending human questions orphaned
// by such a switch so the caller can route them to the fallback path.
func (r *Room) join(conn Conn, role models.Role) ([]*pendingQuestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status == models.RoomStatusClosed {
		return nil, ErrRoomClosed
	}
	var orphaned []*pendingQuestion
	switch role {
	case models.RoleDetective:
		if r.detective != nil && r.detective.ID() != conn.ID() {
			return nil, ErrRoleTaken
		}
		if r.controller != nil && r.controller.ID() == conn.ID() {
			r.controller = nil
			orphaned = r.orphanedHumanQuestionsLocked()
		}
		delete(r.observers, conn.ID())
		r.detective = conn
	case models.RoleCharacterController:
		if r.controller != nil && r.controller.ID() != conn.ID() {
			return nil, ErrRoleTaken
		}
		if r.detective != nil && r.detective.ID() == conn.ID() {
			r.detective = nil
		}
		delete(r.observers, conn.ID())
		r.controller = conn
		// The lock survives disconnects. A controller rebinding with the
		// locking identity takes over answering duties seamlessly.
		if r.lockedCharacter != "" && (r.lockIdentity == "" || r.lockIdentity == conn.Identity()) {
			r.lockOwnerConn = conn.ID()
		}
	case "":
		if r.detective != nil && r.detective.ID() == conn.ID() {
			r.detective = nil
		}
		if r.controller != nil && r.controller.ID() == conn.ID() {
			r.controller = nil
			orphaned = r.orphanedHumanQuestionsLocked()
		}
		r.observers[conn.ID()] = conn
	default:
		return nil, ErrInvalidRole
	}
	if r.detective != nil && r.controller != nil {
		r.status = models.RoomStatusActive
	}
	r.lastActive = time.Now()
	return orphaned, nil
}

// release drops conn's binding. It returns the role that was freed and any
// pending human questions that are now orphaned and need the fallback path.
func (r *Room) release(conn Conn) (models.Role, []*pendingQuestion) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.observers, conn.ID())
	if r.detective != nil && r.detective.ID() == conn.ID() {
		r.detective = nil
		return models.RoleDetective, nil
	}
	if r.controller != nil && r.controller.ID() == conn.ID() {
		r.controller = nil
		return models.RoleCharacterController, r.orphanedHumanQuestionsLocked()
	}
	return "", nil
}

// orphanedHumanQuestionsLocked lists the pending questions that were routed
// to the controller and now have nobody to answer them.
func (r *Room) orphanedHumanQuestionsLocked() []*pendingQuestion {
	var orphaned []*pendingQuestion
	for _, pq := range r.pendingByCorrelation {
		if !pq.automated {
			orphaned = append(orphaned, pq)
		}
	}
	return orphaned
}

// lock claims character for the character controller. Write-once: any second
// call fails, including retries by the owner.
func (r *Room) lock(conn Conn, character string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.controller == nil || r.controller.ID() != conn.ID() {
		return ErrRoleRequired
	}
	if !IsSuspect(character) {
		return ErrUnknownCharacter
	}
	if r.lockedCharacter != "" {
		return ErrAlreadyLocked
	}
	r.lockedCharacter = character
	r.lockOwnerConn = conn.ID()
	r.lockIdentity = conn.Identity()
	r.lastActive = time.Now()
	return nil
}

// beginQuestion validates an ask and registers the pending question. It
// reports whether the question was routed to the human controller; for the
// human path it also delivers questionForMurderer while still holding the
// lock, so the controller can never observe a question that lost a race with
// its own timeout.
func (r *Room) beginQuestion(conn Conn, correlationID, character, question string, deadline time.Time) (*pendingQuestion, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.detective == nil || r.detective.ID() != conn.ID() {
		return nil, false, ErrRoleRequired
	}
	if !IsSuspect(character) {
		return nil, false, ErrUnknownCharacter
	}
	if _, inFlight := r.pendingByCharacter[character]; inFlight {
		return nil, false, ErrQuestionInFlight
	}

	human := r.lockedCharacter == character && r.controller != nil && r.controller.ID() == r.lockOwnerConn
	pq := &pendingQuestion{
		CorrelationID: correlationID,
		Character:     character,
		Question:      question,
		AskedBy:       conn.ID(),
		CreatedAt:     time.Now(),
		Deadline:      deadline,
		automated:     !human,
	}
	r.pendingByCharacter[character] = pq
	r.pendingByCorrelation[correlationID] = pq
	r.lastActive = pq.CreatedAt
	if human {
		r.controller.QuestionForMurderer(correlationID, character, question, deadline)
	}
	return pq, human, nil
}

// armTimer attaches the fallback timer to a still-pending question. If the
// question already resolved in the meantime, the timer is stopped instead.
func (r *Room) armTimer(correlationID string, timer *time.Timer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if pq, ok := r.pendingByCorrelation[correlationID]; ok {
		pq.timer = timer
		return
	}
	timer.Stop()
}

// resolveHuman consumes the pending question for a human answer. Presence in
// the pending table is the sole authority: if the fallback already consumed
// the question the caller gets Expired, and the timer can no longer fire for
// a question consumed here.
func (r *Room) resolveHuman(conn Conn, correlationID string) (*pendingQuestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pq, ok := r.pendingByCorrelation[correlationID]
	if !ok {
		if _, wasExpired := r.expired[correlationID]; wasExpired {
			return nil, ErrExpired
		}
		return nil, ErrUnknownCorrelation
	}
	if pq.automated || r.controller == nil || r.controller.ID() != conn.ID() || conn.ID() != r.lockOwnerConn {
		return nil, ErrForbidden
	}
	r.removePendingLocked(pq)
	return pq, nil
}

// takeExpired consumes the pending question on behalf of the timeout
// fallback. Returns nil when a human answer won the race.
func (r *Room) takeExpired(correlationID string) *pendingQuestion {
	r.mu.Lock()
	defer r.mu.Unlock()
	pq, ok := r.pendingByCorrelation[correlationID]
	if !ok {
		return nil
	}
	r.removePendingLocked(pq)
	r.rememberExpiredLocked(correlationID)
	return pq
}

// takeAutomated consumes an automated in-flight marker before delivery.
func (r *Room) takeAutomated(correlationID string) *pendingQuestion {
	r.mu.Lock()
	defer r.mu.Unlock()
	pq, ok := r.pendingByCorrelation[correlationID]
	if !ok || !pq.automated {
		return nil
	}
	r.removePendingLocked(pq)
	return pq
}

func (r *Room) removePendingLocked(pq *pendingQuestion) {
	delete(r.pendingByCorrelation, pq.CorrelationID)
	delete(r.pendingByCharacter, pq.Character)
	if pq.timer != nil {
		pq.timer.Stop()
	}
}

func (r *Room) rememberExpiredLocked(correlationID string) {
	now := time.Now()
	for id, at := range r.expired {
		if now.Sub(at) > expiredRetention {
			delete(r.expired, id)
		}
	}
	r.expired[correlationID] = now
}

// deliverAnswer broadcasts the answer to everyone in the room. Human and
// automated answers travel through this one path so they are
// indistinguishable on the wire.
func (r *Room) deliverAnswer(character, answer string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastActive = time.Now()
	for _, conn := range r.conns() {
		conn.Answer(character, answer)
	}
}

// systemNotice sends a redacted system message to everyone except the
// connection identified by exceptID.
func (r *Room) systemNotice(msg string, exceptID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, conn := range r.conns() {
		if conn.ID() != exceptID {
			conn.System(msg)
		}
	}
}

// conns must be called with mu held.
func (r *Room) conns() []Conn {
	out := make([]Conn, 0, 2+len(r.observers))
	if r.detective != nil {
		out = append(out, r.detective)
	}
	if r.controller != nil {
		out = append(out, r.controller)
	}
	for _, o := range r.observers {
		out = append(out, o)
	}
	return out
}

// empty reports whether nobody is connected.
func (r *Room) empty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.detective == nil && r.controller == nil && len(r.observers) == 0
}

// idleSince reports the last activity timestamp.
func (r *Room) idleSince() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastActive
}

// close retires the room. Pending timers are stopped; no further answers are
// delivered.
func (r *Room) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = models.RoomStatusClosed
	for _, pq := range r.pendingByCorrelation {
		r.removePendingLocked(pq)
	}
}

func (r *Room) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status == models.RoomStatusClosed
}
