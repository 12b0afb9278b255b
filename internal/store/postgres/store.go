package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"waitline/internal/models"
	"waitline/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

const ticketColumns = "ticket_id, token_number, service_id, status, customer_name, email, phone, request_id, created_at, served_at, completed_at"

type Store struct {
	pool *pgxpool.Pool
	opts Options
	loc  *time.Location
}

type Options struct {
	// TokenBase seeds each day's first token number.
	TokenBase int
	// TokenScopePerService gives every service its own daily sequence
	// instead of the shared display-board sequence.
	TokenScopePerService bool
	// RequireCheckIn makes joins start as arriving instead of waiting.
	RequireCheckIn bool
	// Location determines where "today" rolls over for token numbering.
	Location *time.Location
}

func NewStore(pool *pgxpool.Pool, options Options) *Store {
	if options.TokenBase <= 0 {
		options.TokenBase = 100
	}
	loc := options.Location
	if loc == nil {
		loc = time.Local
	}
	return &Store{pool: pool, opts: options, loc: loc}
}

func (s *Store) JoinQueue(ctx context.Context, input store.JoinInput) (models.Ticket, bool, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Ticket{}, false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if input.RequestID != "" {
		existing, found, err := findTicketByRequestID(ctx, tx, input.RequestID)
		if err != nil {
			return models.Ticket{}, false, err
		}
		if found {
			if err = tx.Commit(ctx); err != nil {
				return models.Ticket{}, false, err
			}
			return existing, false, nil
		}
	}

	service, err := getServiceTx(ctx, tx, input.ServiceID, false)
	if err != nil {
		return models.Ticket{}, false, err
	}

	createdAt := input.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	token, err := s.nextTokenNumber(ctx, tx, createdAt, service.ServiceID)
	if err != nil {
		return models.Ticket{}, false, err
	}

	status := models.StatusWaiting
	if s.opts.RequireCheckIn {
		status = models.StatusArriving
	}

	var ticket models.Ticket
	row := tx.QueryRow(ctx, `
		INSERT INTO tickets (ticket_id, token_number, service_id, status, customer_name, email, phone, request_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+ticketColumns+`
	`, uuid.NewString(), token, service.ServiceID, status, nullIfEmpty(input.CustomerName), nullIfEmpty(input.Email), nullIfEmpty(input.Phone), nullIfEmpty(input.RequestID), createdAt)
	if ticket, err = scanTicket(row); err != nil {
		return models.Ticket{}, false, mapPgError(err)
	}

	if err = insertOutboxEvent(ctx, tx, "ticket.created", ticket.ServiceID, ticketPayload(ticket)); err != nil {
		return models.Ticket{}, false, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Ticket{}, false, err
	}
	return ticket, true, nil
}

func (s *Store) GetTicketView(ctx context.Context, ticketID string) (store.TicketView, error) {
	var view store.TicketView
	var avgMinutes int
	row := s.pool.QueryRow(ctx, `
		SELECT t.ticket_id, t.token_number, t.service_id, t.status, t.customer_name, t.email, t.phone, t.request_id, t.created_at, t.served_at, t.completed_at, s.avg_minutes
		FROM tickets t
		JOIN services s ON s.service_id = t.service_id
		WHERE t.ticket_id = $1
	`, ticketID)
	var customerName, email, phone, requestID sql.NullString
	var servedAt, completedAt sql.NullTime
	if err := row.Scan(&view.TicketID, &view.TokenNumber, &view.ServiceID, &view.Status, &customerName, &email, &phone, &requestID, &view.CreatedAt, &servedAt, &completedAt, &avgMinutes); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.TicketView{}, store.ErrTicketNotFound
		}
		return store.TicketView{}, err
	}
	view.CustomerName = nullString(customerName)
	view.Email = nullString(email)
	view.Phone = nullString(phone)
	view.RequestID = nullString(requestID)
	view.ServedAt = nullTimePtr(servedAt)
	view.CompletedAt = nullTimePtr(completedAt)

	// The ticket at the counter has nobody ahead of it by definition.
	if view.Status == models.StatusServing {
		return view, nil
	}

	row = s.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM tickets
		WHERE service_id = $1 AND status IN ('waiting', 'serving') AND created_at < $2
	`, view.ServiceID, view.CreatedAt)
	if err := row.Scan(&view.PeopleAhead); err != nil {
		return store.TicketView{}, err
	}

	samples, err := s.recentServiceDurations(ctx, view.ServiceID)
	if err != nil {
		return store.TicketView{}, err
	}
	view.EstimatedWaitMinutes = store.EstimateWaitMinutes(view.PeopleAhead, samples, avgMinutes)
	return view, nil
}

func (s *Store) recentServiceDurations(ctx context.Context, serviceID string) ([]time.Duration, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT served_at, completed_at
		FROM tickets
		WHERE service_id = $1 AND status = 'completed'
			AND served_at IS NOT NULL AND completed_at IS NOT NULL
		ORDER BY completed_at DESC
		LIMIT 5
	`, serviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []time.Duration
	for rows.Next() {
		var servedAt, completedAt time.Time
		if err := rows.Scan(&servedAt, &completedAt); err != nil {
			return nil, err
		}
		samples = append(samples, completedAt.Sub(servedAt))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return samples, nil
}

func (s *Store) ListActive(ctx context.Context, serviceID string) ([]models.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE status IN ('arriving', 'waiting', 'serving')
	`
	args := []interface{}{}
	if serviceID != "" {
		query += " AND service_id = $1"
		args = append(args, serviceID)
	}
	query += " ORDER BY created_at ASC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []models.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (s *Store) CheckIn(ctx context.Context, ticketID string, occurredAt time.Time) (models.Ticket, error) {
	return s.Advance(ctx, store.AdvanceInput{TicketID: ticketID, NewStatus: models.StatusWaiting, OccurredAt: occurredAt})
}

func (s *Store) Advance(ctx context.Context, input store.AdvanceInput) (models.Ticket, error) {
	if !store.KnownStatus(input.NewStatus) {
		return models.Ticket{}, store.ErrInvalidTransition
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Ticket{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	row := tx.QueryRow(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets
		WHERE ticket_id = $1
		FOR UPDATE
	`, input.TicketID)
	ticket, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = store.ErrTicketNotFound
		}
		return models.Ticket{}, err
	}

	if !store.ValidTransition(ticket.Status, input.NewStatus) {
		err = store.ErrInvalidTransition
		return models.Ticket{}, err
	}

	occurredAt := input.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	if input.NewStatus == models.StatusServing {
		// One counter, one active ticket: reject a second serving
		// transition instead of silently queueing two at the counter.
		var servingID string
		row := tx.QueryRow(ctx, `
			SELECT ticket_id FROM tickets
			WHERE service_id = $1 AND status = 'serving'
			LIMIT 1
			FOR UPDATE
		`, ticket.ServiceID)
		if err = row.Scan(&servingID); err == nil {
			err = store.ErrInvalidTransition
			return models.Ticket{}, err
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return models.Ticket{}, err
		}
		err = nil
	}

	timestampColumn := ""
	switch input.NewStatus {
	case models.StatusServing:
		timestampColumn = "served_at"
	case models.StatusCompleted:
		timestampColumn = "completed_at"
	}

	updateQuery := "UPDATE tickets SET status = $1"
	args := []interface{}{input.NewStatus}
	if timestampColumn != "" {
		updateQuery += fmt.Sprintf(", %s = $2", timestampColumn)
		args = append(args, occurredAt)
	}
	updateQuery += fmt.Sprintf(" WHERE ticket_id = $%d RETURNING %s", len(args)+1, ticketColumns)
	args = append(args, ticket.TicketID)

	row = tx.QueryRow(ctx, updateQuery, args...)
	if ticket, err = scanTicket(row); err != nil {
		return models.Ticket{}, mapPgError(err)
	}

	if err = insertOutboxEvent(ctx, tx, "ticket."+ticket.Status, ticket.ServiceID, ticketPayload(ticket)); err != nil {
		return models.Ticket{}, err
	}

	if ticket.Status == models.StatusCompleted {
		if err = s.relayTicket(ctx, tx, ticket, occurredAt); err != nil {
			return models.Ticket{}, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Ticket{}, err
	}
	return ticket, nil
}

// relayTicket enqueues the completed ticket's customer into the service's
// next stage, keeping the token number so the customer's display number
// survives the hand-off. A fresh order key puts them at the end of the
// downstream line.
func (s *Store) relayTicket(ctx context.Context, tx pgx.Tx, ticket models.Ticket, occurredAt time.Time) error {
	service, err := getServiceTx(ctx, tx, ticket.ServiceID, true)
	if err != nil {
		return err
	}
	if service.NextServiceID == nil {
		return nil
	}

	next, err := getServiceTx(ctx, tx, *service.NextServiceID, false)
	if errors.Is(err, store.ErrServiceNotFound) {
		// Completion must not fail on a broken chain, but the skip has
		// to be visible to operators.
		log.Printf("relay skipped: token=%d service=%s next=%s target missing or inactive", ticket.TokenNumber, service.ServiceID, *service.NextServiceID)
		return insertOutboxEvent(ctx, tx, "ticket.relay_skipped", service.ServiceID, map[string]interface{}{
			"ticket_id":       ticket.TicketID,
			"token_number":    ticket.TokenNumber,
			"next_service_id": *service.NextServiceID,
		})
	}
	if err != nil {
		return err
	}

	relayed := models.Ticket{
		TicketID:     uuid.NewString(),
		TokenNumber:  ticket.TokenNumber,
		ServiceID:    next.ServiceID,
		Status:       models.StatusWaiting,
		CustomerName: ticket.CustomerName,
		Email:        ticket.Email,
		Phone:        ticket.Phone,
		CreatedAt:    occurredAt,
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO tickets (ticket_id, token_number, service_id, status, customer_name, email, phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, relayed.TicketID, relayed.TokenNumber, relayed.ServiceID, relayed.Status, nullIfEmpty(relayed.CustomerName), nullIfEmpty(relayed.Email), nullIfEmpty(relayed.Phone), relayed.CreatedAt)
	if err != nil {
		return mapPgError(err)
	}
	return insertOutboxEvent(ctx, tx, "ticket.relayed", next.ServiceID, ticketPayload(relayed))
}

func (s *Store) Snooze(ctx context.Context, ticketID string, occurredAt time.Time) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// Lock the snoozing ticket first, then its successor. Every snooze
	// locks in ascending queue order, so overlapping snoozes serialize
	// instead of deadlocking.
	row := tx.QueryRow(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets
		WHERE ticket_id = $1
		FOR UPDATE
	`, ticketID)
	ticket, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = store.ErrTicketNotFound
		}
		return err
	}
	if ticket.Status != models.StatusWaiting {
		err = store.ErrInvalidState
		return err
	}

	row = tx.QueryRow(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets
		WHERE service_id = $1 AND status = 'waiting' AND created_at > $2
		ORDER BY created_at ASC
		LIMIT 1
		FOR UPDATE
	`, ticket.ServiceID, ticket.CreatedAt)
	successor, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = store.ErrNoSuccessor
		}
		return err
	}

	// Swap the two order keys in a single statement so the reorder can
	// never be half applied.
	_, err = tx.Exec(ctx, `
		UPDATE tickets
		SET created_at = CASE ticket_id
			WHEN $1::uuid THEN $4::timestamptz
			WHEN $2::uuid THEN $3::timestamptz
		END
		WHERE ticket_id IN ($1::uuid, $2::uuid)
	`, ticket.TicketID, successor.TicketID, ticket.CreatedAt, successor.CreatedAt)
	if err != nil {
		return err
	}

	err = insertOutboxEvent(ctx, tx, "ticket.snoozed", ticket.ServiceID, map[string]interface{}{
		"ticket_id":          ticket.TicketID,
		"token_number":       ticket.TokenNumber,
		"swapped_with":       successor.TicketID,
		"swapped_with_token": successor.TokenNumber,
		"occurred_at":        occurredAt,
	})
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Store) Analytics(ctx context.Context, from, to time.Time) (store.AnalyticsReport, error) {
	var report store.AnalyticsReport

	rangeFilter := ""
	args := []interface{}{}
	if !from.IsZero() {
		args = append(args, from)
		rangeFilter += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if !to.IsZero() {
		args = append(args, to)
		rangeFilter += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}

	row := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM tickets WHERE status = 'completed'`+rangeFilter, args...)
	if err := row.Scan(&report.TotalCompleted); err != nil {
		return store.AnalyticsReport{}, err
	}

	row = s.pool.QueryRow(ctx, `
		SELECT s.name
		FROM tickets t
		JOIN services s ON s.service_id = t.service_id
		WHERE TRUE`+rangeFilter+`
		GROUP BY s.name
		ORDER BY COUNT(*) DESC, s.name ASC
		LIMIT 1
	`, args...)
	if err := row.Scan(&report.MostPopularService); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return store.AnalyticsReport{}, err
		}
		report.MostPopularService = "N/A"
	}

	rows, err := s.pool.Query(ctx, `
		SELECT EXTRACT(HOUR FROM created_at)::int AS hour, COUNT(*)
		FROM tickets
		WHERE TRUE`+rangeFilter+`
		GROUP BY hour
	`, args...)
	if err != nil {
		return store.AnalyticsReport{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var hour, count int
		if err := rows.Scan(&hour, &count); err != nil {
			return store.AnalyticsReport{}, err
		}
		if hour >= 0 && hour < 24 {
			report.HourlyHistogram[hour] = count
		}
	}
	if err := rows.Err(); err != nil {
		return store.AnalyticsReport{}, err
	}
	return report, nil
}

func (s *Store) CreateService(ctx context.Context, input store.ServiceInput) (models.Service, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Service{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if input.NextServiceID != "" {
		if _, err = getServiceTx(ctx, tx, input.NextServiceID, true); err != nil {
			return models.Service{}, err
		}
	}

	avg := input.AvgMinutes
	if avg <= 0 {
		avg = 10
	}

	var service models.Service
	row := tx.QueryRow(ctx, `
		INSERT INTO services (service_id, name, avg_minutes, icon, next_service_id, active, created_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6)
		RETURNING service_id, name, avg_minutes, COALESCE(icon, ''), next_service_id, active, created_at
	`, uuid.NewString(), input.Name, avg, nullIfEmpty(input.Icon), nullIfEmpty(input.NextServiceID), time.Now().UTC())
	var nextID sql.NullString
	if err = row.Scan(&service.ServiceID, &service.Name, &service.AvgMinutes, &service.Icon, &nextID, &service.Active, &service.CreatedAt); err != nil {
		err = mapServiceError(err)
		return models.Service{}, err
	}
	service.NextServiceID = nullStringPtr(nextID)

	if err = tx.Commit(ctx); err != nil {
		return models.Service{}, err
	}
	return service, nil
}

func (s *Store) UpdateService(ctx context.Context, serviceID string, input store.ServiceInput) (models.Service, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Service{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	current, err := getServiceTx(ctx, tx, serviceID, true)
	if err != nil {
		return models.Service{}, err
	}

	if input.NextServiceID != "" {
		if _, err = getServiceTx(ctx, tx, input.NextServiceID, true); err != nil {
			return models.Service{}, err
		}
		if err = ensureNoRelayCycle(ctx, tx, serviceID, input.NextServiceID); err != nil {
			return models.Service{}, err
		}
	}

	name := input.Name
	if name == "" {
		name = current.Name
	}
	avg := input.AvgMinutes
	if avg <= 0 {
		avg = current.AvgMinutes
	}
	icon := input.Icon
	if icon == "" {
		icon = current.Icon
	}

	var service models.Service
	row := tx.QueryRow(ctx, `
		UPDATE services
		SET name = $2, avg_minutes = $3, icon = $4, next_service_id = $5
		WHERE service_id = $1
		RETURNING service_id, name, avg_minutes, COALESCE(icon, ''), next_service_id, active, created_at
	`, serviceID, name, avg, nullIfEmpty(icon), nullIfEmpty(input.NextServiceID))
	var nextID sql.NullString
	if err = row.Scan(&service.ServiceID, &service.Name, &service.AvgMinutes, &service.Icon, &nextID, &service.Active, &service.CreatedAt); err != nil {
		err = mapServiceError(err)
		return models.Service{}, err
	}
	service.NextServiceID = nullStringPtr(nextID)

	if err = tx.Commit(ctx); err != nil {
		return models.Service{}, err
	}
	return service, nil
}

// ensureNoRelayCycle walks the chain starting at nextID and fails if it
// reaches serviceID. The walk is bounded by the catalog size, so a legacy
// cycle elsewhere in the table cannot hang the update.
func ensureNoRelayCycle(ctx context.Context, tx pgx.Tx, serviceID, nextID string) error {
	var total int
	row := tx.QueryRow(ctx, `SELECT COUNT(*) FROM services`)
	if err := row.Scan(&total); err != nil {
		return err
	}

	current := nextID
	for i := 0; i <= total; i++ {
		if current == serviceID {
			return store.ErrRelayCycle
		}
		var next sql.NullString
		row := tx.QueryRow(ctx, `SELECT next_service_id FROM services WHERE service_id = $1`, current)
		if err := row.Scan(&next); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}
		if !next.Valid {
			return nil
		}
		current = next.String
	}
	return store.ErrRelayCycle
}

func (s *Store) ListServices(ctx context.Context) ([]models.Service, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT service_id, name, avg_minutes, COALESCE(icon, ''), next_service_id, active, created_at
		FROM services
		WHERE active = TRUE
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []models.Service
	for rows.Next() {
		var service models.Service
		var nextID sql.NullString
		if err := rows.Scan(&service.ServiceID, &service.Name, &service.AvgMinutes, &service.Icon, &nextID, &service.Active, &service.CreatedAt); err != nil {
			return nil, err
		}
		service.NextServiceID = nullStringPtr(nextID)
		services = append(services, service)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return services, nil
}

func (s *Store) GetService(ctx context.Context, serviceID string) (models.Service, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return models.Service{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	return getServiceTx(ctx, tx, serviceID, true)
}

func (s *Store) ListOutboxEvents(ctx context.Context, after time.Time, limit int) ([]store.OutboxEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT event_id, type, service_id, payload, created_at
		FROM outbox_events
	`
	args := []interface{}{}
	if !after.IsZero() {
		query += " WHERE created_at > $1"
		args = append(args, after)
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at ASC LIMIT $%d", len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []store.OutboxEvent
	for rows.Next() {
		var event store.OutboxEvent
		if err := rows.Scan(&event.EventID, &event.Type, &event.ServiceID, &event.Payload, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// nextTokenNumber hands out the next display token for the day the ticket
// is created on. The conflict-target upsert makes concurrent joins
// serialize on the sequence row, so two racing joins can never read the
// same maximum.
func (s *Store) nextTokenNumber(ctx context.Context, tx pgx.Tx, createdAt time.Time, serviceID string) (int, error) {
	scope := "shared"
	if s.opts.TokenScopePerService {
		scope = serviceID
	}
	day := createdAt.In(s.loc).Format("2006-01-02")

	var token int
	row := tx.QueryRow(ctx, `
		INSERT INTO token_sequences (day, scope, next_number)
		VALUES ($1, $2, $3)
		ON CONFLICT (day, scope)
		DO UPDATE SET next_number = token_sequences.next_number + 1
		RETURNING next_number
	`, day, scope, s.opts.TokenBase)
	if err := row.Scan(&token); err != nil {
		return 0, err
	}
	return token, nil
}

func getServiceTx(ctx context.Context, tx pgx.Tx, serviceID string, includeInactive bool) (models.Service, error) {
	query := `
		SELECT service_id, name, avg_minutes, COALESCE(icon, ''), next_service_id, active, created_at
		FROM services
		WHERE service_id = $1
	`
	if !includeInactive {
		query += " AND active = TRUE"
	}
	var service models.Service
	var nextID sql.NullString
	row := tx.QueryRow(ctx, query, serviceID)
	if err := row.Scan(&service.ServiceID, &service.Name, &service.AvgMinutes, &service.Icon, &nextID, &service.Active, &service.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Service{}, store.ErrServiceNotFound
		}
		return models.Service{}, err
	}
	service.NextServiceID = nullStringPtr(nextID)
	return service, nil
}

func findTicketByRequestID(ctx context.Context, tx pgx.Tx, requestID string) (models.Ticket, bool, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets
		WHERE request_id = $1
	`, requestID)
	ticket, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Ticket{}, false, nil
		}
		return models.Ticket{}, false, err
	}
	return ticket, true, nil
}

func insertOutboxEvent(ctx context.Context, tx pgx.Tx, eventType, serviceID string, payload map[string]interface{}) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO outbox_events (event_id, type, service_id, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.NewString(), eventType, serviceID, payloadJSON, time.Now().UTC())
	return err
}

func ticketPayload(ticket models.Ticket) map[string]interface{} {
	return map[string]interface{}{
		"ticket_id":     ticket.TicketID,
		"token_number":  ticket.TokenNumber,
		"service_id":    ticket.ServiceID,
		"status":        ticket.Status,
		"customer_name": ticket.CustomerName,
		"email":         ticket.Email,
		"phone":         ticket.Phone,
		"created_at":    ticket.CreatedAt,
		"served_at":     ticket.ServedAt,
		"completed_at":  ticket.CompletedAt,
	}
}

func scanTicket(row pgx.Row) (models.Ticket, error) {
	var ticket models.Ticket
	var customerName, email, phone, requestID sql.NullString
	var servedAt, completedAt sql.NullTime
	if err := row.Scan(&ticket.TicketID, &ticket.TokenNumber, &ticket.ServiceID, &ticket.Status, &customerName, &email, &phone, &requestID, &ticket.CreatedAt, &servedAt, &completedAt); err != nil {
		return models.Ticket{}, err
	}
	ticket.CustomerName = nullString(customerName)
	ticket.Email = nullString(email)
	ticket.Phone = nullString(phone)
	ticket.RequestID = nullString(requestID)
	ticket.ServedAt = nullTimePtr(servedAt)
	ticket.CompletedAt = nullTimePtr(completedAt)
	return ticket, nil
}

// mapPgError turns unique-index violations into the retryable conflict
// error: the serving partial index and the request_id column both only
// trip under concurrent writers.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return store.ErrConflict
	}
	return err
}

func mapServiceError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return store.ErrDuplicateService
	}
	return err
}

func nullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

func nullString(value sql.NullString) string {
	if !value.Valid {
		return ""
	}
	return value.String
}

func nullStringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	return &value.String
}

func nullTimePtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	return &value.Time
}
