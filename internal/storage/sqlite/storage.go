package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/mcoot/netplay-go/internal/model"
	"github.com/mcoot/netplay-go/internal/storage"
)

// profileRecord is the persisted row shape; model.Profile stays free of
// gorm tags
type profileRecord struct {
	ID          uint   `gorm:"primaryKey"`
	Kind        string `gorm:"uniqueIndex:idx_profile_identity;not null"`
	Key         string `gorm:"uniqueIndex:idx_profile_identity;not null"`
	DisplayName string
	Country     string
	CreatedAt   time.Time
	LastSeenAt  time.Time
}

func (profileRecord) TableName() string {
	return "profiles"
}

func recordFromProfile(p *model.Profile) profileRecord {
	return profileRecord{
		Kind:        string(p.Kind),
		Key:         p.Key,
		DisplayName: p.DisplayName,
		Country:     p.Country,
		CreatedAt:   p.CreatedAt,
		LastSeenAt:  p.LastSeenAt,
	}
}

func (r profileRecord) toProfile() *model.Profile {
	return &model.Profile{
		Key:         r.Key,
		Kind:        model.IdentityKind(r.Kind),
		DisplayName: r.DisplayName,
		Country:     r.Country,
		CreatedAt:   r.CreatedAt,
		LastSeenAt:  r.LastSeenAt,
	}
}

// Storage is a SQLite-backed implementation of the storage interface
type Storage struct {
	db *gorm.DB
}

// New opens (or creates) the database file and migrates the schema
func New(path string) (*Storage, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.AutoMigrate(&profileRecord{}); err != nil {
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close closes the underlying database connection
func (s *Storage) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveProfile(ctx context.Context, profile *model.Profile) error {
	record := recordFromProfile(profile)
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "kind"}, {Name: "key"}},
		UpdateAll: true,
	}).Create(&record).Error
}

func (s *Storage) GetProfile(ctx context.Context, kind model.IdentityKind, key string) (*model.Profile, error) {
	var record profileRecord
	err := s.db.WithContext(ctx).
		Where("kind = ? AND key = ?", string(kind), key).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrProfileNotFound
		}
		return nil, err
	}
	return record.toProfile(), nil
}

func (s *Storage) DeleteProfile(ctx context.Context, kind model.IdentityKind, key string) error {
	return s.db.WithContext(ctx).
		Where("kind = ? AND key = ?", string(kind), key).
		Delete(&profileRecord{}).Error
}

func (s *Storage) ListProfiles(ctx context.Context) ([]*model.Profile, error) {
	var records []profileRecord
	if err := s.db.WithContext(ctx).Find(&records).Error; err != nil {
		return nil, err
	}

	profiles := make([]*model.Profile, 0, len(records))
	for _, record := range records {
		profiles = append(profiles, record.toProfile())
	}
	return profiles, nil
}
