package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	reservationserrors "stablebook/internal/reservations/errors"
	"stablebook/internal/reservations/notify"
	"stablebook/internal/reservations/repository"
	"stablebook/internal/reservations/validator"
	"stablebook/pkg/config"
	mongotx "stablebook/pkg/db/mongo"
	"stablebook/pkg/logger"
	"stablebook/pkg/model"
)

// memState is the in-memory equivalent of the reservation collections.
type memState struct {
	reservations []model.Reservation
	stables      map[string]model.Stable
	horses       map[string]model.Horse
	users        map[string]model.User
	slots        []model.AvailabilitySlot
	promos       map[string]model.PromoCode
	overrides    []model.SkillOverrideRequest
	settings     map[string]any
	locks        map[string]int64
	reviewed     map[string]bool
	scored       map[string]bool
	trustWrites  int
}

// memDB lets transactions interleave freely. The only isolation is the
// per-horse mutex taken by HorseLocks.Acquire and held until the transaction
// ends, so a batch that skips the lock races the way it would on a replica
// set. Writes inside a transaction record undo steps for rollback.
type memDB struct {
	mu      sync.Mutex
	state   memState
	seq     int
	horseMu map[string]*sync.Mutex

	// checkDelay stalls overlap reads to widen the window between the
	// conflict check and the insert.
	checkDelay time.Duration
	failCreate error
	failSlots  error
}

type memTxn struct {
	held map[string]*sync.Mutex
	undo []func(s *memState)
}

func (txn *memTxn) release() {
	for _, m := range txn.held {
		m.Unlock()
	}
}

type txnKey struct{}

func txnFrom(ctx context.Context) *memTxn {
	txn, _ := ctx.Value(txnKey{}).(*memTxn)
	return txn
}

// onRollback must be called with db.mu held. Writes outside a transaction
// are not undone.
func onRollback(ctx context.Context, fn func(s *memState)) {
	if txn := txnFrom(ctx); txn != nil {
		txn.undo = append(txn.undo, fn)
	}
}

func newMemDB() *memDB {
	return &memDB{state: memState{
		stables:  map[string]model.Stable{},
		horses:   map[string]model.Horse{},
		users:    map[string]model.User{},
		promos:   map[string]model.PromoCode{},
		settings: map[string]any{},
		locks:    map[string]int64{},
		reviewed: map[string]bool{},
		scored:   map[string]bool{},
	}, horseMu: map[string]*sync.Mutex{}}
}

func (db *memDB) store() *repository.Store {
	return &repository.Store{
		Reservations: memReservations{db},
		Stables:      memStables{db},
		Horses:       memHorses{db},
		HorseLocks:   memLocks{db},
		Users:        memUsers{db},
		Slots:        memSlots{db},
		Promos:       memPromos{db},
		Overrides:    memOverrides{db},
		SystemConfig: memSettings{db},
		Tx:           memTx{db},
	}
}

func (db *memDB) read(fn func(s *memState)) {
	db.mu.Lock()
	defer db.mu.Unlock()
	fn(&db.state)
}

type memTx struct{ db *memDB }

func (t memTx) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	txn := &memTxn{held: map[string]*sync.Mutex{}}
	defer txn.release()

	if err := fn(context.WithValue(ctx, txnKey{}, txn)); err != nil {
		t.db.mu.Lock()
		for i := len(txn.undo) - 1; i >= 0; i-- {
			txn.undo[i](&t.db.state)
		}
		t.db.mu.Unlock()
		return mongotx.ClassifyTransactionError(ctx, err)
	}
	return nil
}

type memReservations struct{ db *memDB }

func (r memReservations) Create(ctx context.Context, reservation *model.Reservation) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failCreate != nil {
		return r.db.failCreate
	}
	r.db.seq++
	id := primitive.NewObjectID().Hex()
	reservation.ID = id
	reservation.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(r.db.seq) * time.Second)
	r.db.state.reservations = append(r.db.state.reservations, *reservation)
	onRollback(ctx, func(s *memState) {
		for i, res := range s.reservations {
			if res.ID == id {
				s.reservations = append(s.reservations[:i], s.reservations[i+1:]...)
				return
			}
		}
	})
	return nil
}

func (r memReservations) FindByID(_ context.Context, id string) (*model.Reservation, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, res := range r.db.state.reservations {
		if res.ID == id {
			found := res
			return &found, nil
		}
	}
	return nil, reservationserrors.ErrNotFound
}

func isActive(res model.Reservation) bool {
	return res.Status == model.ReservationStatusPending || res.Status == model.ReservationStatusConfirmed
}

func (r memReservations) FindActiveOverlapping(_ context.Context, horseID string, start, end time.Time) ([]*model.Reservation, error) {
	r.db.mu.Lock()
	var out []*model.Reservation
	for _, res := range r.db.state.reservations {
		if res.HorseID == horseID && isActive(res) && !res.StartTime.After(end) && !res.EndTime.Before(start) {
			found := res
			out = append(out, &found)
		}
	}
	r.db.mu.Unlock()

	if r.db.checkDelay > 0 {
		time.Sleep(r.db.checkDelay)
	}
	return out, nil
}

func (r memReservations) CountActiveStartingBetween(_ context.Context, horseID string, from, to time.Time) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for _, res := range r.db.state.reservations {
		if res.HorseID == horseID && isActive(res) && !res.StartTime.Before(from) && res.StartTime.Before(to) {
			n++
		}
	}
	return n, nil
}

func (r memReservations) matching(filter repository.ReservationFilter) []*model.ReservationView {
	var views []*model.ReservationView
	for _, res := range r.db.state.reservations {
		if filter.RiderID != "" && res.RiderID != filter.RiderID {
			continue
		}
		if len(filter.StableIDs) > 0 && !contains(filter.StableIDs, res.StableID) {
			continue
		}
		if len(filter.Statuses) > 0 && !contains(filter.Statuses, res.Status) {
			continue
		}
		scored := r.db.state.scored[res.ID]
		if filter.ExcludeScored && scored {
			continue
		}
		views = append(views, &model.ReservationView{
			Reservation:   res,
			HasReview:     r.db.state.reviewed[res.ID],
			AlreadyScored: scored,
		})
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].CreatedAt.After(views[j].CreatedAt)
	})
	return views
}

func (r memReservations) List(_ context.Context, filter repository.ReservationFilter, limit int, offset int64) ([]*model.ReservationView, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	views := r.matching(filter)
	if int(offset) >= len(views) {
		return nil, nil
	}
	views = views[offset:]
	if limit > 0 && len(views) > limit {
		views = views[:limit]
	}
	return views, nil
}

func (r memReservations) Count(_ context.Context, filter repository.ReservationFilter) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return int64(len(r.matching(filter))), nil
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}

type memStables struct{ db *memDB }

func (r memStables) FindByID(_ context.Context, id string) (*model.Stable, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stable, ok := r.db.state.stables[id]
	if !ok {
		return nil, reservationserrors.ErrStableNotFound
	}
	return &stable, nil
}

func (r memStables) FindIDsByOwner(_ context.Context, ownerID string) ([]string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var ids []string
	for id, stable := range r.db.state.stables {
		if stable.OwnerID == ownerID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

type memHorses struct{ db *memDB }

func (r memHorses) FindByID(_ context.Context, id string) (*model.Horse, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	horse, ok := r.db.state.horses[id]
	if !ok {
		return nil, reservationserrors.ErrHorseNotFound
	}
	return &horse, nil
}

type memLocks struct{ db *memDB }

// Acquire blocks until no other transaction holds the horse. A transaction
// may lock the same horse twice.
func (r memLocks) Acquire(ctx context.Context, horseID string) error {
	if txn := txnFrom(ctx); txn != nil {
		if _, ok := txn.held[horseID]; !ok {
			r.db.mu.Lock()
			m := r.db.horseMu[horseID]
			if m == nil {
				m = &sync.Mutex{}
				r.db.horseMu[horseID] = m
			}
			r.db.mu.Unlock()

			m.Lock()
			txn.held[horseID] = m
		}
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.state.locks[horseID]++
	onRollback(ctx, func(s *memState) { s.locks[horseID]-- })
	return nil
}

type memUsers struct{ db *memDB }

func (r memUsers) FindByID(_ context.Context, id string) (*model.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	user, ok := r.db.state.users[id]
	if !ok {
		return nil, reservationserrors.ErrUserNotFound
	}
	return &user, nil
}

func (r memUsers) FindAdminIDs(_ context.Context) ([]string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var ids []string
	for id, user := range r.db.state.users {
		if user.Role == model.RoleAdmin {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r memUsers) MarkTrusted(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	user, ok := r.db.state.users[id]
	if !ok {
		return reservationserrors.ErrUserNotFound
	}
	wasTrusted := user.IsTrusted
	onRollback(ctx, func(s *memState) {
		u := s.users[id]
		u.IsTrusted = wasTrusted
		s.users[id] = u
		s.trustWrites--
	})
	user.IsTrusted = true
	r.db.state.users[id] = user
	r.db.state.trustWrites++
	return nil
}

type memSlots struct{ db *memDB }

func (r memSlots) MarkBooked(ctx context.Context, horseID string, start, end time.Time, reservationID string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failSlots != nil {
		return 0, r.db.failSlots
	}
	var n int64
	for i, slot := range r.db.state.slots {
		if slot.HorseID == horseID && slot.Status == model.SlotStatusOpen &&
			!slot.StartTime.Before(start) && !slot.EndTime.After(end) {
			r.db.state.slots[i].Status = model.SlotStatusBooked
			r.db.state.slots[i].ReservationID = reservationID
			onRollback(ctx, func(s *memState) {
				s.slots[i].Status = model.SlotStatusOpen
				s.slots[i].ReservationID = ""
			})
			n++
		}
	}
	return n, nil
}

type memPromos struct{ db *memDB }

func (r memPromos) IncrementUsage(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	promo, ok := r.db.state.promos[id]
	if !ok {
		return reservationserrors.ErrPromoNotFound
	}
	promo.UsedCount++
	r.db.state.promos[id] = promo
	onRollback(ctx, func(s *memState) {
		p := s.promos[id]
		p.UsedCount--
		s.promos[id] = p
	})
	return nil
}

type memOverrides struct{ db *memDB }

func (r memOverrides) HasApproved(_ context.Context, riderID, horseID string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, o := range r.db.state.overrides {
		if o.RiderID == riderID && o.HorseID == horseID && o.Status == model.OverrideStatusApproved {
			return true, nil
		}
	}
	return false, nil
}

type memSettings struct{ db *memDB }

func (r memSettings) Bool(_ context.Context, key string, fallback bool) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	v, ok := r.db.state.settings[key].(bool)
	if !ok {
		return fallback, nil
	}
	return v, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []notify.Event
	reject bool
}

func (n *fakeNotifier) Dispatch(event notify.Event) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return !n.reject
}

// Fixture ids are valid ObjectID hex strings so they pass request validation.
const (
	stableID      = "650000000000000000000001"
	ownerID       = "650000000000000000000002"
	riderID       = "650000000000000000000003"
	secondRiderID = "650000000000000000000004"
	thirdRiderID  = "650000000000000000000005"
	adminID       = "650000000000000000000006"
	strangerID    = "650000000000000000000007"

	horseID        = "650000000000000000000011"
	secondHorseID  = "650000000000000000000012"
	thirdHorseID   = "650000000000000000000013"
	advancedHorse  = "650000000000000000000014"
	inactiveHorse  = "650000000000000000000015"
	foreignHorseID = "650000000000000000000016"

	promoID = "650000000000000000000021"

	otherStableID   = "650000000000000000000031"
	pendingStableID = "650000000000000000000032"
	unknownID       = "650000000000000000000099"
)

var testNow = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func floatPtr(v float64) *float64 { return &v }

func seed(db *memDB) {
	s := &db.state
	s.stables[stableID] = model.Stable{ID: stableID, OwnerID: ownerID, Name: "Willow Creek", Status: model.StableStatusApproved}
	s.stables[otherStableID] = model.Stable{ID: otherStableID, OwnerID: strangerID, Name: "Far Field", Status: model.StableStatusApproved}
	s.stables[pendingStableID] = model.Stable{ID: pendingStableID, OwnerID: ownerID, Name: "New Barn", Status: model.StableStatusPending}

	s.horses[horseID] = model.Horse{ID: horseID, StableID: stableID, Name: "Clover", IsActive: true, PricePerHour: floatPtr(100)}
	s.horses[secondHorseID] = model.Horse{ID: secondHorseID, StableID: stableID, Name: "Maple", IsActive: true}
	s.horses[thirdHorseID] = model.Horse{ID: thirdHorseID, StableID: stableID, Name: "Juniper", IsActive: true}
	s.horses[advancedHorse] = model.Horse{ID: advancedHorse, StableID: stableID, Name: "Tempest", IsActive: true, SkillLevel: "Advanced", TrainerSkillLevel: "beginner"}
	s.horses[inactiveHorse] = model.Horse{ID: inactiveHorse, StableID: stableID, Name: "Retired", IsActive: false}
	s.horses[foreignHorseID] = model.Horse{ID: foreignHorseID, StableID: otherStableID, Name: "Stranger", IsActive: true}

	s.users[ownerID] = model.User{ID: ownerID, Name: "Olive Owner", Role: model.RoleStableOwner}
	s.users[riderID] = model.User{ID: riderID, Name: "Riley", Role: model.RoleRider, RankPoints: 1000}
	s.users[secondRiderID] = model.User{ID: secondRiderID, Name: "Sam", Role: model.RoleRider, RankPoints: 1400}
	s.users[thirdRiderID] = model.User{ID: thirdRiderID, Name: "Alex", Role: model.RoleRider, RankPoints: 1800}
	s.users[adminID] = model.User{ID: adminID, Name: "Ada", Role: model.RoleAdmin}
	s.users[strangerID] = model.User{ID: strangerID, Name: "Sol", Role: model.RoleStableOwner}

	s.promos[promoID] = model.PromoCode{ID: promoID, Code: "SPRING"}
}

type fixture struct {
	db       *memDB
	notifier *fakeNotifier
	svc      *reservationService
}

func newFixture() *fixture {
	db := newMemDB()
	seed(db)
	notifier := &fakeNotifier{}

	cfg := &config.Config{
		Log:                     logger.Discard(),
		DefaultPricePerHour:     50,
		DefaultCommissionRate:   0.15,
		DefaultMinLeadTimeHours: 8,
		DefaultLocation:         time.UTC,
	}
	svc := NewReservationService(db.store(), validator.NewReservationValidator(logger.Discard(), 20), notifier, cfg).(*reservationService)
	svc.now = func() time.Time { return testNow }

	return &fixture{db: db, notifier: notifier, svc: svc}
}

func (f *fixture) reservations() []model.Reservation {
	var out []model.Reservation
	f.db.read(func(s *memState) {
		out = append(out, s.reservations...)
	})
	return out
}

func (f *fixture) addReservation(res model.Reservation) model.Reservation {
	if res.Status == "" {
		res.Status = model.ReservationStatusConfirmed
	}
	if res.StableID == "" {
		res.StableID = stableID
	}
	_ = memReservations{f.db}.Create(context.Background(), &res)
	return res
}
