package submission

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"persona/internal/domain"
)

// PostgresStore persists submissions in PostgreSQL. Child collections travel
// as one JSONB payload; the review queue never queries inside them.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, sub *Submission) error {
	payload, proofs, err := encodeSubmission(sub)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO submissions (id, submitter_id, person_profile_id, first_name, last_name, payload, proofs, status, review_notes, reviewed_by, reviewed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, sub.ID, sub.SubmitterID, sub.PersonProfileID, sub.FirstName, sub.LastName, payload, proofs,
		string(sub.Status), sub.ReviewNotes, sub.ReviewedBy, sub.ReviewedAt, sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("save submission: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (*Submission, error) {
	row := s.db.QueryRowContext(ctx, selectSubmission+` WHERE id = $1`, id)
	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return sub, nil
}

func (s *PostgresStore) ListApprovedByProfile(ctx context.Context, profileID uuid.UUID) ([]*Submission, error) {
	return s.list(ctx, selectSubmission+` WHERE status = 'approved' AND person_profile_id = $1 ORDER BY created_at DESC`, profileID)
}

func (s *PostgresStore) ListApprovedByName(ctx context.Context, firstName, lastName string) ([]*Submission, error) {
	return s.list(ctx, selectSubmission+` WHERE status = 'approved' AND LOWER(first_name) = LOWER($1) AND LOWER(last_name) = LOWER($2) ORDER BY created_at DESC`, firstName, lastName)
}

func (s *PostgresStore) ListPending(ctx context.Context) ([]*Submission, error) {
	return s.list(ctx, selectSubmission+` WHERE status = 'pending' ORDER BY created_at ASC`)
}

func (s *PostgresStore) Update(ctx context.Context, sub *Submission) error {
	payload, proofs, err := encodeSubmission(sub)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE submissions SET
			person_profile_id = $1, payload = $2, proofs = $3, status = $4,
			review_notes = $5, reviewed_by = $6, reviewed_at = $7
		WHERE id = $8
	`, sub.PersonProfileID, payload, proofs, string(sub.Status),
		sub.ReviewNotes, sub.ReviewedBy, sub.ReviewedAt, sub.ID)
	if err != nil {
		return fmt.Errorf("update submission: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const selectSubmission = `
	SELECT id, submitter_id, person_profile_id, first_name, last_name, payload, proofs, status, review_notes, reviewed_by, reviewed_at, created_at
	FROM submissions`

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*Submission, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var out []*Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row scanner) (*Submission, error) {
	sub := &Submission{}
	var (
		profileID sql.NullString
		payload   []byte
		proofs    []byte
		status    string
		notes     sql.NullString
		reviewer  sql.NullString
		reviewed  sql.NullTime
	)
	err := row.Scan(&sub.ID, &sub.SubmitterID, &profileID, &sub.FirstName, &sub.LastName,
		&payload, &proofs, &status, &notes, &reviewer, &reviewed, &sub.CreatedAt)
	if err != nil {
		return nil, err
	}
	sub.Status = Status(status)
	if profileID.Valid {
		id, err := uuid.Parse(profileID.String)
		if err != nil {
			return nil, fmt.Errorf("parse profile id: %w", err)
		}
		sub.PersonProfileID = &id
	}
	if notes.Valid {
		sub.ReviewNotes = &notes.String
	}
	if reviewer.Valid {
		sub.ReviewedBy = &reviewer.String
	}
	if reviewed.Valid {
		t := reviewed.Time
		sub.ReviewedAt = &t
	}
	if err := json.Unmarshal(payload, &sub.Data); err != nil {
		return nil, fmt.Errorf("unmarshal submission payload: %w", err)
	}
	if err := json.Unmarshal(proofs, &sub.Proofs); err != nil {
		return nil, fmt.Errorf("unmarshal submission proofs: %w", err)
	}
	return sub, nil
}

func encodeSubmission(sub *Submission) (payload, proofs []byte, err error) {
	payload, err = json.Marshal(sub.Data)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal submission payload: %w", err)
	}
	proofs, err = json.Marshal(sub.Proofs)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal submission proofs: %w", err)
	}
	return payload, proofs, nil
}
