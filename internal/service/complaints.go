package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"marketplace-service/internal/kv"
	"marketplace-service/internal/models"
	"marketplace-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Complaints is the buyer complaint log under kv.KeyComplaints
type Complaints struct {
	mu     sync.Mutex
	kv     kv.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewComplaints(store kv.Store) *Complaints {
	return &Complaints{
		kv:     store,
		logger: util.Named("complaints"),
		now:    time.Now,
	}
}

// List returns complaints oldest first
func (c *Complaints) List(ctx context.Context) ([]models.Complaint, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.read(ctx)
}

// Create files a new complaint in the Pending state
func (c *Complaints) Create(ctx context.Context, description string, proofImage *string) (models.Complaint, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return models.Complaint{}, fmt.Errorf("description is required: %w", ErrValidation)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	list, err := c.read(ctx)
	if err != nil {
		return models.Complaint{}, err
	}

	complaint := models.Complaint{
		ID:          uuid.New().String(),
		Description: description,
		ProofImage:  proofImage,
		Status:      models.ComplaintPending,
		CreatedAt:   c.now(),
	}
	if err := c.write(ctx, append(list, complaint)); err != nil {
		return models.Complaint{}, err
	}

	c.logger.Info("Complaint filed", zap.String("complaint_id", complaint.ID))
	return complaint, nil
}

// Update replaces description and proof. The status is kept. Unknown ids are
// ignored and reported as false.
func (c *Complaints) Update(ctx context.Context, id, description string, proofImage *string) (bool, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return false, fmt.Errorf("description is required: %w", ErrValidation)
	}
	return c.modify(ctx, id, func(cp *models.Complaint) {
		cp.Description = description
		cp.ProofImage = proofImage
	})
}

// SetStatus moves a complaint to status
func (c *Complaints) SetStatus(ctx context.Context, id string, status models.ComplaintStatus) (bool, error) {
	if !status.Valid() {
		return false, fmt.Errorf("unknown complaint status %q: %w", status, ErrValidation)
	}
	return c.modify(ctx, id, func(cp *models.Complaint) {
		cp.Status = status
	})
}

// Delete removes the complaint if present
func (c *Complaints) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	list, err := c.read(ctx)
	if err != nil {
		return err
	}

	next := make([]models.Complaint, 0, len(list))
	for _, cp := range list {
		if cp.ID != id {
			next = append(next, cp)
		}
	}
	if len(next) == len(list) {
		return nil
	}
	return c.write(ctx, next)
}

func (c *Complaints) modify(ctx context.Context, id string, fn func(*models.Complaint)) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	list, err := c.read(ctx)
	if err != nil {
		return false, err
	}

	for i := range list {
		if list[i].ID == id {
			fn(&list[i])
			return true, c.write(ctx, list)
		}
	}
	return false, nil
}

func (c *Complaints) read(ctx context.Context) ([]models.Complaint, error) {
	list := []models.Complaint{}
	if _, err := kv.GetJSON(ctx, c.kv, kv.KeyComplaints, &list); err != nil {
		util.StorageErrorsTotal.WithLabelValues("read").Inc()
		return nil, err
	}
	return list, nil
}

func (c *Complaints) write(ctx context.Context, list []models.Complaint) error {
	if err := kv.SetJSON(ctx, c.kv, kv.KeyComplaints, list); err != nil {
		util.StorageErrorsTotal.WithLabelValues("write").Inc()
		return err
	}
	return nil
}
