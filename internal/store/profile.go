package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Profile represents one user's calibration result: the baseline hand size,
// the per-finger extension thresholds and the pinch threshold.
type Profile struct {
	ID             string
	Name           string
	BaseHandSize   float64
	PinchThreshold float64
	HasPinch       bool
	Fingers        map[string]float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ProfileRepository provides CRUD operations for calibration profiles.
type ProfileRepository struct {
	db *sql.DB
}

// Profiles returns the profile repository for this store.
func (s *Store) Profiles() *ProfileRepository {
	return &ProfileRepository{db: s.db}
}

// Create inserts a new profile and its finger thresholds in a single
// transaction.
func (r *ProfileRepository) Create(p *Profile) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO profiles (id, name, base_hand_size, pinch_threshold, has_pinch, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.BaseHandSize, p.PinchThreshold, boolToInt(p.HasPinch), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if err := insertThresholds(tx, p.ID, p.Fingers); err != nil {
		return err
	}

	return tx.Commit()
}

// GetByID retrieves a profile, including its finger thresholds, by ID.
func (r *ProfileRepository) GetByID(id string) (*Profile, error) {
	return r.getBy(`id = ?`, id)
}

// GetByName retrieves a profile, including its finger thresholds, by name.
func (r *ProfileRepository) GetByName(name string) (*Profile, error) {
	return r.getBy(`name = ?`, name)
}

func (r *ProfileRepository) getBy(where string, arg any) (*Profile, error) {
	p := &Profile{}
	var hasPinch int

	err := r.db.QueryRow(
		`SELECT id, name, base_hand_size, pinch_threshold, has_pinch, created_at, updated_at
		 FROM profiles WHERE `+where,
		arg,
	).Scan(&p.ID, &p.Name, &p.BaseHandSize, &p.PinchThreshold, &hasPinch, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	p.HasPinch = hasPinch != 0

	fingers, err := r.GetThresholds(p.ID)
	if err != nil {
		return nil, err
	}
	p.Fingers = fingers

	return p, nil
}

// GetThresholds retrieves the per-finger thresholds for a profile.
func (r *ProfileRepository) GetThresholds(profileID string) (map[string]float64, error) {
	rows, err := r.db.Query(
		`SELECT finger, value FROM profile_thresholds WHERE profile_id = ?`,
		profileID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fingers := make(map[string]float64)
	for rows.Next() {
		var finger string
		var value float64
		if err := rows.Scan(&finger, &value); err != nil {
			return nil, err
		}
		fingers[finger] = value
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return fingers, nil
}

// List retrieves all profiles, newest first, without their finger
// thresholds. Use GetByID for the full record.
func (r *ProfileRepository) List() ([]*Profile, error) {
	rows, err := r.db.Query(
		`SELECT id, name, base_hand_size, pinch_threshold, has_pinch, created_at, updated_at
		 FROM profiles ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*Profile
	for rows.Next() {
		p := &Profile{}
		var hasPinch int

		err := rows.Scan(&p.ID, &p.Name, &p.BaseHandSize, &p.PinchThreshold, &hasPinch, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, err
		}

		p.HasPinch = hasPinch != 0
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return profiles, nil
}

// Update replaces an existing profile and its thresholds.
func (r *ProfileRepository) Update(p *Profile) error {
	p.UpdatedAt = time.Now()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`UPDATE profiles SET name = ?, base_hand_size = ?, pinch_threshold = ?, has_pinch = ?, updated_at = ?
		 WHERE id = ?`,
		p.Name, p.BaseHandSize, p.PinchThreshold, boolToInt(p.HasPinch), p.UpdatedAt, p.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(`DELETE FROM profile_thresholds WHERE profile_id = ?`, p.ID); err != nil {
		return err
	}
	if err := insertThresholds(tx, p.ID, p.Fingers); err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes a profile by its ID. The thresholds cascade.
func (r *ProfileRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func insertThresholds(tx *sql.Tx, profileID string, fingers map[string]float64) error {
	if len(fingers) == 0 {
		return nil
	}

	stmt, err := tx.Prepare(`INSERT INTO profile_thresholds (profile_id, finger, value) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for finger, value := range fingers {
		if _, err := stmt.Exec(profileID, finger, value); err != nil {
			return err
		}
	}

	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
