package profile

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&Profile{})
}

// Get returns the saved profile, or defaults when nothing has been saved
// yet. A missing row is not an error: the client treats the default
// profile as a blank form.
func (s *Store) Get(ctx context.Context) (*Profile, error) {
	var p Profile
	err := s.db.WithContext(ctx).Where("id = ?", defaultID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Defaults(), nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Save replaces the profile wholesale. There are no partial updates; the
// client always submits the full form.
func (s *Store) Save(ctx context.Context, p *Profile) error {
	p.ID = defaultID
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(p).Error
}
