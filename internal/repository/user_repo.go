package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jonathanaloya/cineflix/internal/db"
	"github.com/jonathanaloya/cineflix/internal/models"
)

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository() *UserRepository {
	return &UserRepository{col: db.DB().Collection("users")}
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &u, err
}

// FindByEmailOrMobile matches either identity field against the same
// value, the way the login form submits it.
func (r *UserRepository) FindByEmailOrMobile(ctx context.Context, v string) (*models.User, error) {
	var u models.User
	filter := bson.M{"$or": bson.A{bson.M{"email": v}, bson.M{"mobile": v}}}
	err := r.col.FindOne(ctx, filter).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &u, err
}

// ExistsByIdentity reports whether the email, or the mobile when given,
// is already taken.
func (r *UserRepository) ExistsByIdentity(ctx context.Context, email, mobile string) (bool, error) {
	or := bson.A{bson.M{"email": email}}
	if mobile != "" {
		or = append(or, bson.M{"mobile": mobile})
	}
	n, err := r.col.CountDocuments(ctx, bson.M{"$or": or})
	return n > 0, err
}

func (r *UserRepository) Insert(ctx context.Context, u *models.User) error {
	res, err := r.col.InsertOne(ctx, u)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return nil
}

func (r *UserRepository) UpdateSubscription(ctx context.Context, id primitive.ObjectID, sub models.Subscription) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"subscription": sub, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *UserRepository) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isActive": active, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ResetDailyStreams zeroes the counter when the stored day is older than
// day. The date filter makes the reset a no-op for same-day requests, so
// concurrent resets cannot clobber a counter already advanced today.
func (r *UserRepository) ResetDailyStreams(ctx context.Context, id primitive.ObjectID, day time.Time) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "dailyStreams.date": bson.M{"$lt": day}},
		bson.M{"$set": bson.M{"dailyStreams": models.DailyStreams{Date: day, Count: 0}}},
	)
	return err
}

// ReserveDailyStream consumes one unit of today's quota with a single
// conditional increment: it matches only while the stored day equals day
// and the count is still under limit. A false return means the quota was
// already exhausted (possibly by a concurrent request).
func (r *UserRepository) ReserveDailyStream(ctx context.Context, id primitive.ObjectID, day time.Time, limit int) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{
			"_id":                id,
			"dailyStreams.date":  day,
			"dailyStreams.count": bson.M{"$lt": limit},
		},
		bson.M{"$inc": bson.M{"dailyStreams.count": 1}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// AddToList adds a movie reference to one of the user's list fields
// (watchlist, favorites, downloadedMovies) without duplicating it.
func (r *UserRepository) AddToList(ctx context.Context, id primitive.ObjectID, field string, movieID primitive.ObjectID) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$addToSet": bson.M{field: movieID}},
	)
	return err
}

func (r *UserRepository) RemoveFromList(ctx context.Context, id primitive.ObjectID, field string, movieID primitive.ObjectID) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$pull": bson.M{field: movieID}},
	)
	return err
}

// ListAll returns every user, newest first, with the password hash
// projected away.
func (r *UserRepository) ListAll(ctx context.Context) ([]models.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetProjection(bson.M{"passwordHash": 0})

	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.User
	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, cur.Err()
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}

// CountActiveSubscriptions counts paid subscriptions that have not
// lapsed at now.
func (r *UserRepository) CountActiveSubscriptions(ctx context.Context, now time.Time) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{
		"subscription.type":      bson.M{"$ne": models.TierFree},
		"subscription.expiresAt": bson.M{"$gt": now},
	})
}
