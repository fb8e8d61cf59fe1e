package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/careconnect/healthcare-portal/internal/core/domain"
	"github.com/careconnect/healthcare-portal/internal/core/ports"
)

const collectionNotifications = "notifications"

// NotificationRepository is the durable notification log. Notifications are
// insert-only; this subsystem never updates or deletes them.
type NotificationRepository struct {
	col *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{col: db.Collection(collectionNotifications)}
}

type mongoNotification struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Title         string             `bson:"title"`
	Message       string             `bson:"message"`
	Type          string             `bson:"type"`
	RecipientID   string             `bson:"recipient_id,omitempty"`
	RecipientRole string             `bson:"recipient_role"`
	CreatedBy     string             `bson:"created_by"`
	CreatedAt     time.Time          `bson:"created_at"`
}

func (mn *mongoNotification) toDomain() *domain.Notification {
	return &domain.Notification{
		ID:            mn.ID.Hex(),
		Title:         mn.Title,
		Message:       mn.Message,
		Type:          domain.NotificationType(mn.Type),
		RecipientID:   mn.RecipientID,
		RecipientRole: mn.RecipientRole,
		CreatedBy:     mn.CreatedBy,
		CreatedAt:     mn.CreatedAt,
	}
}

func (r *NotificationRepository) Insert(ctx context.Context, n *domain.Notification) (string, error) {
	doc := mongoNotification{
		Title:         n.Title,
		Message:       n.Message,
		Type:          string(n.Type),
		RecipientID:   n.RecipientID,
		RecipientRole: n.RecipientRole,
		CreatedBy:     n.CreatedBy,
		CreatedAt:     n.CreatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("insert notification: %w", err)
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

// QueryRecent selects the notifications a user qualifies for: addressed to
// them directly, to their role cohort, or to everyone, created at or after
// filter.Since, newest first, capped at limit.
func (r *NotificationRepository) QueryRecent(ctx context.Context, filter ports.RecentNotificationsFilter, limit int) ([]*domain.Notification, error) {
	query := bson.M{
		"$or": bson.A{
			bson.M{"recipient_id": filter.UserID},
			bson.M{"recipient_id": bson.M{"$exists": false}, "recipient_role": filter.Role},
			bson.M{"recipient_id": bson.M{"$exists": false}, "recipient_role": domain.RoleAll},
		},
		"created_at": bson.M{"$gte": filter.Since},
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.Notification
	for cur.Next(ctx) {
		var mn mongoNotification
		if err := cur.Decode(&mn); err != nil {
			return nil, fmt.Errorf("decode notification: %w", err)
		}
		out = append(out, mn.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return out, nil
}

// EnsureIndexes creates the indexes the backfill query relies on.
func (r *NotificationRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "recipient_id", Value: 1}}},
		{Keys: bson.D{{Key: "recipient_role", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
