package postgres

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"waitline/internal/models"
	"waitline/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func TestJoinQueueTokenSequence(t *testing.T) {
	ctx := context.Background()
	st, _, cleanup := setupTestStore(t, ctx, Options{})
	t.Cleanup(cleanup)

	serviceID := createService(t, ctx, st, "Passports", 10, "")

	for i, want := range []int{100, 101, 102} {
		ticket := joinQueue(t, ctx, st, serviceID, "")
		if ticket.TokenNumber != want {
			t.Fatalf("join %d: expected token %d, got %d", i, want, ticket.TokenNumber)
		}
		if ticket.Status != models.StatusWaiting {
			t.Fatalf("expected waiting, got %q", ticket.Status)
		}
	}
}

func TestJoinQueueSharedSequenceAcrossServices(t *testing.T) {
	ctx := context.Background()
	st, _, cleanup := setupTestStore(t, ctx, Options{})
	t.Cleanup(cleanup)

	passports := createService(t, ctx, st, "Passports", 10, "")
	licenses := createService(t, ctx, st, "Licenses", 10, "")

	first := joinQueue(t, ctx, st, passports, "")
	second := joinQueue(t, ctx, st, licenses, "")

	if first.TokenNumber != 100 || second.TokenNumber != 101 {
		t.Fatalf("expected shared sequence 100,101, got %d,%d", first.TokenNumber, second.TokenNumber)
	}
}

func TestJoinQueuePerServiceSequence(t *testing.T) {
	ctx := context.Background()
	st, _, cleanup := setupTestStore(t, ctx, Options{TokenScopePerService: true})
	t.Cleanup(cleanup)

	passports := createService(t, ctx, st, "Passports", 10, "")
	licenses := createService(t, ctx, st, "Licenses", 10, "")

	first := joinQueue(t, ctx, st, passports, "")
	second := joinQueue(t, ctx, st, licenses, "")

	if first.TokenNumber != 100 || second.TokenNumber != 100 {
		t.Fatalf("expected independent sequences 100,100, got %d,%d", first.TokenNumber, second.TokenNumber)
	}
}

func TestJoinQueueConcurrentTokensDistinct(t *testing.T) {
	ctx := context.Background()
	st, _, cleanup := setupTestStore(t, ctx, Options{})
	t.Cleanup(cleanup)

	serviceID := createService(t, ctx, st, "Passports", 10, "")

	const joins = 8
	var wg sync.WaitGroup
	tokens := make(chan int, joins)
	for i := 0; i < joins; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ticket, _, err := st.JoinQueue(ctx, store.JoinInput{
				ServiceID: serviceID,
				CreatedAt: time.Now().UTC(),
			})
			if err != nil {
				t.Errorf("join: %v", err)
				return
			}
			tokens <- ticket.TokenNumber
		}()
	}
	wg.Wait()
	close(tokens)

	seen := make(map[int]bool)
	for token := range tokens {
		if seen[token] {
			t.Fatalf("duplicate token %d handed out", token)
		}
		seen[token] = true
	}
	if len(seen) != joins {
		t.Fatalf("expected %d tokens, got %d", joins, len(seen))
	}
}

func TestJoinQueueIdempotent(t *testing.T) {
	ctx := context.Background()
	st, pool, cleanup := setupTestStore(t, ctx, Options{})
	t.Cleanup(cleanup)

	serviceID := createService(t, ctx, st, "Passports", 10, "")
	requestID := uuid.NewString()

	first := joinQueue(t, ctx, st, serviceID, requestID)
	second := joinQueue(t, ctx, st, serviceID, requestID)

	if first.TicketID != second.TicketID {
		t.Fatalf("expected same ticket for duplicate request")
	}
	if first.TokenNumber != second.TokenNumber {
		t.Fatalf("expected same token for duplicate request")
	}

	var count int
	row := pool.QueryRow(ctx, `SELECT COUNT(*) FROM outbox_events WHERE type = 'ticket.created'`)
	if err := row.Scan(&count); err != nil {
		t.Fatalf("count outbox events: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 ticket.created event, got %d", count)
	}
}

func TestCheckInFlow(t *testing.T) {
	ctx := context.Background()
	st, _, cleanup := setupTestStore(t, ctx, Options{RequireCheckIn: true})
	t.Cleanup(cleanup)

	serviceID := createService(t, ctx, st, "Passports", 10, "")
	ticket := joinQueue(t, ctx, st, serviceID, "")
	if ticket.Status != models.StatusArriving {
		t.Fatalf("expected arriving, got %q", ticket.Status)
	}

	checked, err := st.CheckIn(ctx, ticket.TicketID, time.Now().UTC())
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	if checked.Status != models.StatusWaiting {
		t.Fatalf("expected waiting after check-in, got %q", checked.Status)
	}
}

func TestAdvanceLifecycle(t *testing.T) {
	ctx := context.Background()
	st, _, cleanup := setupTestStore(t, ctx, Options{})
	t.Cleanup(cleanup)

	serviceID := createService(t, ctx, st, "Passports", 10, "")
	ticket := joinQueue(t, ctx, st, serviceID, "")

	// Jumping straight to completed must be rejected.
	_, err := st.Advance(ctx, store.AdvanceInput{TicketID: ticket.TicketID, NewStatus: models.StatusCompleted, OccurredAt: time.Now().UTC()})
	if !errors.Is(err, store.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	serving, err := st.Advance(ctx, store.AdvanceInput{TicketID: ticket.TicketID, NewStatus: models.StatusServing, OccurredAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("advance to serving: %v", err)
	}
	if serving.ServedAt == nil {
		t.Fatalf("expected served_at to be stamped")
	}

	completed, err := st.Advance(ctx, store.AdvanceInput{TicketID: ticket.TicketID, NewStatus: models.StatusCompleted, OccurredAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("advance to completed: %v", err)
	}
	if completed.CompletedAt == nil {
		t.Fatalf("expected completed_at to be stamped")
	}

	// Completed is terminal.
	_, err = st.Advance(ctx, store.AdvanceInput{TicketID: ticket.TicketID, NewStatus: models.StatusWaiting, OccurredAt: time.Now().UTC()})
	if !errors.Is(err, store.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition from completed, got %v", err)
	}
}

func TestAdvanceRejectsSecondServing(t *testing.T) {
	ctx := context.Background()
	st, _, cleanup := setupTestStore(t, ctx, Options{})
	t.Cleanup(cleanup)

	serviceID := createService(t, ctx, st, "Passports", 10, "")
	first := joinQueue(t, ctx, st, serviceID, "")
	second := joinQueue(t, ctx, st, serviceID, "")

	if _, err := st.Advance(ctx, store.AdvanceInput{TicketID: first.TicketID, NewStatus: models.StatusServing, OccurredAt: time.Now().UTC()}); err != nil {
		t.Fatalf("advance first: %v", err)
	}

	_, err := st.Advance(ctx, store.AdvanceInput{TicketID: second.TicketID, NewStatus: models.StatusServing, OccurredAt: time.Now().UTC()})
	if !errors.Is(err, store.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for second serving, got %v", err)
	}
}

func TestConcurrentServingExactlyOne(t *testing.T) {
	ctx := context.Background()
	st, _, cleanup := setupTestStore(t, ctx, Options{})
	t.Cleanup(cleanup)

	serviceID := createService(t, ctx, st, "Passports", 10, "")
	first := joinQueue(t, ctx, st, serviceID, "")
	second := joinQueue(t, ctx, st, serviceID, "")

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for _, id := range []string{first.TicketID, second.TicketID} {
		wg.Add(1)
		go func(ticketID string) {
			defer wg.Done()
			_, err := st.Advance(ctx, store.AdvanceInput{
				TicketID:   ticketID,
				NewStatus:  models.StatusServing,
				OccurredAt: time.Now().UTC(),
			})
			results <- err
		}(id)
	}
	wg.Wait()
	close(results)

	var succeeded, rejected int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, store.ErrInvalidTransition), errors.Is(err, store.ErrConflict):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 || rejected != 1 {
		t.Fatalf("expected exactly one serving, got succeeded=%d rejected=%d", succeeded, rejected)
	}
}

func TestSnoozeSwapsOrder(t *testing.T) {
	ctx := context.Background()
	st, _, cleanup := setupTestStore(t, ctx, Options{})
	t.Cleanup(cleanup)

	serviceID := createService(t, ctx, st, "Passports", 10, "")

	base := time.Now().UTC().Truncate(time.Millisecond)
	var tickets []models.Ticket
	for i := 0; i < 3; i++ {
		ticket, _, err := st.JoinQueue(ctx, store.JoinInput{
			ServiceID: serviceID,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("join %d: %v", i, err)
		}
		tickets = append(tickets, ticket)
	}

	if err := st.Snooze(ctx, tickets[0].TicketID, time.Now().UTC()); err != nil {
		t.Fatalf("snooze: %v", err)
	}

	active, err := st.ListActive(ctx, serviceID)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 3 {
		t.Fatalf("expected 3 active tickets, got %d", len(active))
	}
	wantOrder := []string{tickets[1].TicketID, tickets[0].TicketID, tickets[2].TicketID}
	for i, want := range wantOrder {
		if active[i].TicketID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, active[i].TicketID)
		}
	}

	// The last waiting ticket has nobody to swap with.
	err = st.Snooze(ctx, tickets[2].TicketID, time.Now().UTC())
	if !errors.Is(err, store.ErrNoSuccessor) {
		t.Fatalf("expected ErrNoSuccessor, got %v", err)
	}
}

func TestSnoozeRequiresWaiting(t *testing.T) {
	ctx := context.Background()
	st, _, cleanup := setupTestStore(t, ctx, Options{})
	t.Cleanup(cleanup)

	serviceID := createService(t, ctx, st, "Passports", 10, "")
	ticket := joinQueue(t, ctx, st, serviceID, "")
	joinQueue(t, ctx, st, serviceID, "")

	if _, err := st.Advance(ctx, store.AdvanceInput{TicketID: ticket.TicketID, NewStatus: models.StatusServing, OccurredAt: time.Now().UTC()}); err != nil {
		t.Fatalf("advance: %v", err)
	}

	err := st.Snooze(ctx, ticket.TicketID, time.Now().UTC())
	if !errors.Is(err, store.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestRelayContinuity(t *testing.T) {
	ctx := context.Background()
	st, pool, cleanup := setupTestStore(t, ctx, Options{})
	t.Cleanup(cleanup)

	triage := createService(t, ctx, st, "Triage", 5, "")
	doctor := createService(t, ctx, st, "Doctor", 15, "")
	if _, err := st.UpdateService(ctx, triage, store.ServiceInput{NextServiceID: doctor}); err != nil {
		t.Fatalf("link services: %v", err)
	}

	ticket := joinQueue(t, ctx, st, triage, "")
	completeTicket(t, ctx, st, ticket.TicketID)

	active, err := st.ListActive(ctx, doctor)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected 1 relayed ticket, got %d", len(active))
	}
	if active[0].TokenNumber != ticket.TokenNumber {
		t.Fatalf("expected token %d to survive the relay, got %d", ticket.TokenNumber, active[0].TokenNumber)
	}
	if active[0].Status != models.StatusWaiting {
		t.Fatalf("expected relayed ticket to be waiting, got %q", active[0].Status)
	}

	var count int
	row := pool.QueryRow(ctx, `SELECT COUNT(*) FROM outbox_events WHERE type = 'ticket.relayed'`)
	if err := row.Scan(&count); err != nil {
		t.Fatalf("count outbox events: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 ticket.relayed event, got %d", count)
	}
}

func TestRelaySkippedWhenTargetInactive(t *testing.T) {
	ctx := context.Background()
	st, pool, cleanup := setupTestStore(t, ctx, Options{})
	t.Cleanup(cleanup)

	triage := createService(t, ctx, st, "Triage", 5, "")
	doctor := createService(t, ctx, st, "Doctor", 15, "")
	if _, err := st.UpdateService(ctx, triage, store.ServiceInput{NextServiceID: doctor}); err != nil {
		t.Fatalf("link services: %v", err)
	}
	if _, err := pool.Exec(ctx, `UPDATE services SET active = FALSE WHERE service_id = $1`, doctor); err != nil {
		t.Fatalf("deactivate target: %v", err)
	}

	ticket := joinQueue(t, ctx, st, triage, "")
	completeTicket(t, ctx, st, ticket.TicketID)

	active, err := st.ListActive(ctx, doctor)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected no relayed ticket, got %d", len(active))
	}

	var count int
	row := pool.QueryRow(ctx, `SELECT COUNT(*) FROM outbox_events WHERE type = 'ticket.relay_skipped'`)
	if err := row.Scan(&count); err != nil {
		t.Fatalf("count outbox events: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 ticket.relay_skipped event, got %d", count)
	}
}

func TestUpdateServiceRejectsRelayCycle(t *testing.T) {
	ctx := context.Background()
	st, _, cleanup := setupTestStore(t, ctx, Options{})
	t.Cleanup(cleanup)

	a := createService(t, ctx, st, "Stage A", 5, "")
	b := createService(t, ctx, st, "Stage B", 5, "")
	if _, err := st.UpdateService(ctx, a, store.ServiceInput{NextServiceID: b}); err != nil {
		t.Fatalf("link a->b: %v", err)
	}

	_, err := st.UpdateService(ctx, b, store.ServiceInput{NextServiceID: a})
	if !errors.Is(err, store.ErrRelayCycle) {
		t.Fatalf("expected ErrRelayCycle, got %v", err)
	}

	_, err = st.UpdateService(ctx, a, store.ServiceInput{NextServiceID: a})
	if !errors.Is(err, store.ErrRelayCycle) {
		t.Fatalf("expected ErrRelayCycle for self-reference, got %v", err)
	}
}

func TestGetTicketViewEstimation(t *testing.T) {
	ctx := context.Background()
	st, _, cleanup := setupTestStore(t, ctx, Options{})
	t.Cleanup(cleanup)

	serviceID := createService(t, ctx, st, "Passports", 10, "")

	base := time.Now().UTC().Truncate(time.Millisecond)
	var last models.Ticket
	for i := 0; i < 3; i++ {
		ticket, _, err := st.JoinQueue(ctx, store.JoinInput{
			ServiceID: serviceID,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("join %d: %v", i, err)
		}
		last = ticket
	}

	// No completion history yet: the static average applies.
	view, err := st.GetTicketView(ctx, last.TicketID)
	if err != nil {
		t.Fatalf("get view: %v", err)
	}
	if view.PeopleAhead != 2 {
		t.Fatalf("expected 2 ahead, got %d", view.PeopleAhead)
	}
	if view.EstimatedWaitMinutes != 20 {
		t.Fatalf("expected 20 minute estimate, got %d", view.EstimatedWaitMinutes)
	}
}

func TestGetTicketViewUsesRecentCompletions(t *testing.T) {
	ctx := context.Background()
	st, pool, cleanup := setupTestStore(t, ctx, Options{})
	t.Cleanup(cleanup)

	serviceID := createService(t, ctx, st, "Passports", 10, "")

	// Seed completed history: each visit took 4 minutes.
	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		served := now.Add(time.Duration(-30+i) * time.Minute)
		if _, err := pool.Exec(ctx, `
			INSERT INTO tickets (ticket_id, token_number, service_id, status, created_at, served_at, completed_at)
			VALUES ($1, $2, $3, 'completed', $4, $4, $5)
		`, uuid.NewString(), 90+i, serviceID, served, served.Add(4*time.Minute)); err != nil {
			t.Fatalf("seed completed ticket: %v", err)
		}
	}

	joinQueue(t, ctx, st, serviceID, "")
	second := joinQueue(t, ctx, st, serviceID, "")

	view, err := st.GetTicketView(ctx, second.TicketID)
	if err != nil {
		t.Fatalf("get view: %v", err)
	}
	if view.PeopleAhead != 1 {
		t.Fatalf("expected 1 ahead, got %d", view.PeopleAhead)
	}
	if view.EstimatedWaitMinutes != 4 {
		t.Fatalf("expected 4 minute estimate from history, got %d", view.EstimatedWaitMinutes)
	}
}

func TestGetTicketViewServingHasNobodyAhead(t *testing.T) {
	ctx := context.Background()
	st, _, cleanup := setupTestStore(t, ctx, Options{})
	t.Cleanup(cleanup)

	serviceID := createService(t, ctx, st, "Passports", 10, "")
	ticket := joinQueue(t, ctx, st, serviceID, "")
	joinQueue(t, ctx, st, serviceID, "")

	if _, err := st.Advance(ctx, store.AdvanceInput{TicketID: ticket.TicketID, NewStatus: models.StatusServing, OccurredAt: time.Now().UTC()}); err != nil {
		t.Fatalf("advance: %v", err)
	}

	view, err := st.GetTicketView(ctx, ticket.TicketID)
	if err != nil {
		t.Fatalf("get view: %v", err)
	}
	if view.PeopleAhead != 0 || view.EstimatedWaitMinutes != 0 {
		t.Fatalf("expected 0/0 for the serving ticket, got %d/%d", view.PeopleAhead, view.EstimatedWaitMinutes)
	}
}

func TestAnalytics(t *testing.T) {
	ctx := context.Background()
	st, _, cleanup := setupTestStore(t, ctx, Options{})
	t.Cleanup(cleanup)

	passports := createService(t, ctx, st, "Passports", 10, "")
	licenses := createService(t, ctx, st, "Licenses", 10, "")

	for i := 0; i < 2; i++ {
		ticket := joinQueue(t, ctx, st, passports, "")
		completeTicket(t, ctx, st, ticket.TicketID)
	}
	joinQueue(t, ctx, st, licenses, "")

	report, err := st.Analytics(ctx, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if report.TotalCompleted != 2 {
		t.Fatalf("expected 2 completed, got %d", report.TotalCompleted)
	}
	if report.MostPopularService != "Passports" {
		t.Fatalf("expected Passports, got %q", report.MostPopularService)
	}

	var histogramTotal int
	for _, count := range report.HourlyHistogram {
		histogramTotal += count
	}
	if histogramTotal != 3 {
		t.Fatalf("expected 3 tickets in histogram, got %d", histogramTotal)
	}
}

func TestAnalyticsEmpty(t *testing.T) {
	ctx := context.Background()
	st, _, cleanup := setupTestStore(t, ctx, Options{})
	t.Cleanup(cleanup)

	report, err := st.Analytics(ctx, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if report.TotalCompleted != 0 {
		t.Fatalf("expected 0 completed, got %d", report.TotalCompleted)
	}
	if report.MostPopularService != "N/A" {
		t.Fatalf("expected N/A, got %q", report.MostPopularService)
	}
}

func TestCreateServiceDuplicateName(t *testing.T) {
	ctx := context.Background()
	st, _, cleanup := setupTestStore(t, ctx, Options{})
	t.Cleanup(cleanup)

	createService(t, ctx, st, "Passports", 10, "")
	_, err := st.CreateService(ctx, store.ServiceInput{Name: "Passports"})
	if !errors.Is(err, store.ErrDuplicateService) {
		t.Fatalf("expected ErrDuplicateService, got %v", err)
	}
}

func setupTestStore(t *testing.T, ctx context.Context, options Options) (*Store, *pgxpool.Pool, func()) {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		dsn = os.Getenv("DB_DSN")
	}
	if dsn == "" {
		t.Skip("TEST_DB_DSN or DB_DSN is required for integration tests")
	}

	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := createSchema(ctx, dsn, schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	pool, err := newPoolWithSchema(ctx, dsn, schema)
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}

	if err := applyMigrations(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("apply migrations: %v", err)
	}

	if options.Location == nil {
		options.Location = time.UTC
	}
	store := NewStore(pool, options)
	cleanup := func() {
		pool.Close()
		_ = dropSchema(context.Background(), dsn, schema)
	}
	return store, pool, cleanup
}

func createSchema(ctx context.Context, dsn, schema string) error {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)
	_, err = conn.Exec(ctx, "CREATE SCHEMA "+schema)
	return err
}

func dropSchema(ctx context.Context, dsn, schema string) error {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)
	_, err = conn.Exec(ctx, "DROP SCHEMA "+schema+" CASCADE")
	return err
}

func newPoolWithSchema(ctx context.Context, dsn, schema string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.ConnConfig.RuntimeParams["search_path"] = schema
	return pgxpool.NewWithConfig(ctx, cfg)
}

func applyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	dir := filepath.Join("..", "..", "..", "migrations")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)
	for _, name := range files {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(content)) == "" {
			continue
		}
		if _, err := pool.Exec(ctx, string(content)); err != nil {
			return err
		}
	}
	return nil
}

func createService(t *testing.T, ctx context.Context, st *Store, name string, avgMinutes int, nextServiceID string) string {
	t.Helper()
	service, err := st.CreateService(ctx, store.ServiceInput{
		Name:          name,
		AvgMinutes:    avgMinutes,
		NextServiceID: nextServiceID,
	})
	if err != nil {
		t.Fatalf("create service %s: %v", name, err)
	}
	return service.ServiceID
}

func joinQueue(t *testing.T, ctx context.Context, st *Store, serviceID, requestID string) models.Ticket {
	t.Helper()
	ticket, _, err := st.JoinQueue(ctx, store.JoinInput{
		RequestID: requestID,
		ServiceID: serviceID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("join queue: %v", err)
	}
	return ticket
}

func completeTicket(t *testing.T, ctx context.Context, st *Store, ticketID string) {
	t.Helper()
	if _, err := st.Advance(ctx, store.AdvanceInput{TicketID: ticketID, NewStatus: models.StatusServing, OccurredAt: time.Now().UTC()}); err != nil {
		t.Fatalf("advance to serving: %v", err)
	}
	if _, err := st.Advance(ctx, store.AdvanceInput{TicketID: ticketID, NewStatus: models.StatusCompleted, OccurredAt: time.Now().UTC()}); err != nil {
		t.Fatalf("advance to completed: %v", err)
	}
}
