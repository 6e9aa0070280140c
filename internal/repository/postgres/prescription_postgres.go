package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"rxledger/internal/model"
	"rxledger/internal/repository"
)

// PrescriptionPostgres is a PostgreSQL implementation of
// repository.PrescriptionRepository. Writes that must be atomic (record plus
// index entries, locked fulfillment appends) run inside transactions; the
// schema's primary keys back the uniqueness guarantees under concurrency.
type PrescriptionPostgres struct {
	db *sql.DB
}

// NewPrescriptionPostgres creates a new PrescriptionPostgres repository.
func NewPrescriptionPostgres(db *sql.DB) *PrescriptionPostgres {
	return &PrescriptionPostgres{db: db}
}

var _ repository.PrescriptionRepository = (*PrescriptionPostgres)(nil)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Create inserts the prescription row and both index rows in one transaction.
func (r *PrescriptionPostgres) Create(ctx context.Context, p *model.Prescription) (*model.Prescription, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	const qInsert = `
		INSERT INTO prescriptions (id, issuer, recipient, fingerprint, locator, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`
	res, err := tx.ExecContext(ctx, qInsert,
		p.ID,
		p.Issuer,
		p.Recipient,
		p.Fingerprint,
		p.Locator,
		p.IssuedAt,
		p.ExpiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert prescription: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, repository.ErrDuplicateID
	}

	const qIssuerIdx = `INSERT INTO issuer_index (issuer, prescription_id) VALUES ($1, $2)`
	if _, err := tx.ExecContext(ctx, qIssuerIdx, p.Issuer, p.ID); err != nil {
		return nil, fmt.Errorf("insert issuer index: %w", err)
	}
	const qRecipientIdx = `INSERT INTO recipient_index (recipient, prescription_id) VALUES ($1, $2)`
	if _, err := tx.ExecContext(ctx, qRecipientIdx, p.Recipient, p.ID); err != nil {
		return nil, fmt.Errorf("insert recipient index: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	out := *p
	out.Fulfillments = []model.Fulfillment{}
	return &out, nil
}

// FindByID fetches the record and its fulfillment sequence in insertion order.
func (r *PrescriptionPostgres) FindByID(ctx context.Context, id string) (*model.Prescription, error) {
	const qRecord = `
		SELECT id, issuer, recipient, fingerprint, locator, issued_at, expires_at
		FROM prescriptions
		WHERE id = $1
	`
	var p model.Prescription
	err := r.db.QueryRowContext(ctx, qRecord, id).Scan(
		&p.ID,
		&p.Issuer,
		&p.Recipient,
		&p.Fingerprint,
		&p.Locator,
		&p.IssuedAt,
		&p.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}

	const qFulfillments = `
		SELECT prescription_id, party, party_name, fulfilled_at
		FROM fulfillments
		WHERE prescription_id = $1
		ORDER BY seq ASC
	`
	rows, err := r.db.QueryContext(ctx, qFulfillments, id)
	if err != nil {
		return nil, fmt.Errorf("query fulfillments: %w", err)
	}
	defer rows.Close()

	p.Fulfillments = make([]model.Fulfillment, 0)
	for rows.Next() {
		var f model.Fulfillment
		if err := rows.Scan(&f.PrescriptionID, &f.Party, &f.PartyName, &f.FulfilledAt); err != nil {
			return nil, err
		}
		p.Fulfillments = append(p.Fulfillments, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &p, nil
}

// AppendFulfillment locks the record row, then appends the entry. The
// (prescription_id, party) primary key rejects a duplicate party even if two
// appends race past the lock acquisition.
func (r *PrescriptionPostgres) AppendFulfillment(ctx context.Context, prescriptionID string, f *model.Fulfillment) (*model.Fulfillment, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	const qLock = `SELECT id FROM prescriptions WHERE id = $1 FOR UPDATE`
	var lockedID string
	if err := tx.QueryRowContext(ctx, qLock, prescriptionID).Scan(&lockedID); err != nil {
		return nil, err
	}

	const qInsert = `
		INSERT INTO fulfillments (prescription_id, party, party_name, fulfilled_at)
		VALUES ($1, $2, $3, $4)
		RETURNING prescription_id, party, party_name, fulfilled_at
	`
	var out model.Fulfillment
	err = tx.QueryRowContext(ctx, qInsert,
		prescriptionID,
		f.Party,
		f.PartyName,
		f.FulfilledAt,
	).Scan(&out.PrescriptionID, &out.Party, &out.PartyName, &out.FulfilledAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrFulfillmentExists
		}
		return nil, fmt.Errorf("insert fulfillment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &out, nil
}

// HasFulfillment is a pure existence check; unknown prescription IDs are
// simply reported as not fulfilled rather than as an error.
func (r *PrescriptionPostgres) HasFulfillment(ctx context.Context, prescriptionID, party string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM fulfillments WHERE prescription_id = $1 AND party = $2)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, prescriptionID, party).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ListByIssuer returns IDs from the issuer index in issuance order.
func (r *PrescriptionPostgres) ListByIssuer(ctx context.Context, issuer string) ([]string, error) {
	const q = `SELECT prescription_id FROM issuer_index WHERE issuer = $1 ORDER BY position ASC`
	return r.listIDs(ctx, q, issuer)
}

// ListByRecipient returns IDs from the recipient index in issuance order.
func (r *PrescriptionPostgres) ListByRecipient(ctx context.Context, recipient string) ([]string, error) {
	const q = `SELECT prescription_id FROM recipient_index WHERE recipient = $1 ORDER BY position ASC`
	return r.listIDs(ctx, q, recipient)
}

func (r *PrescriptionPostgres) listIDs(ctx context.Context, query, key string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
