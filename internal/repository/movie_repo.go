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

// summaryProjection is the field set browse queries return.
var summaryProjection = bson.M{
	"title":                1,
	"description":          1,
	"poster":               1,
	"rating":               1,
	"releaseYear":          1,
	"duration":             1,
	"category":             1,
	"primaryLanguage":      1,
	"subscriptionRequired": 1,
}

// ListFilter is the AND-combined browse filter; zero values impose no
// constraint.
type ListFilter struct {
	Category string
	Type     string
	Genre    string
	Language string
	Search   string
}

type MovieRepository struct {
	col *mongo.Collection
}

func NewMovieRepository() *MovieRepository {
	return &MovieRepository{col: db.DB().Collection("movies")}
}

func (r *MovieRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Movie, error) {
	var m models.Movie
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &m, err
}

func (r *MovieRepository) List(ctx context.Context, f ListFilter) ([]models.MovieSummary, error) {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	if f.Genre != "" {
		// genre is an array; equality matches membership
		filter["genre"] = f.Genre
	}
	if f.Language != "" {
		filter["primaryLanguage"] = f.Language
	}
	if f.Search != "" {
		filter["title"] = bson.M{"$regex": primitive.Regex{Pattern: f.Search, Options: "i"}}
	}

	opts := options.Find().
		SetProjection(summaryProjection).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	return r.findSummaries(ctx, filter, opts)
}

// ListByCategory orders by featured desc then viewCount desc.
func (r *MovieRepository) ListByCategory(ctx context.Context, category, language string, limit int) ([]models.Movie, error) {
	filter := bson.M{"category": category}
	if language != "" {
		filter["primaryLanguage"] = language
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "featured", Value: -1}, {Key: "viewCount", Value: -1}}).
		SetLimit(int64(limit))

	return r.findMovies(ctx, filter, opts)
}

func (r *MovieRepository) Featured(ctx context.Context, limit int) ([]models.MovieSummary, error) {
	opts := options.Find().
		SetProjection(summaryProjection).
		SetSort(bson.D{{Key: "viewCount", Value: -1}}).
		SetLimit(int64(limit))

	return r.findSummaries(ctx, bson.M{"featured": true}, opts)
}

func (r *MovieRepository) Recent(ctx context.Context, limit int) ([]models.MovieSummary, error) {
	opts := options.Find().
		SetProjection(summaryProjection).
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	return r.findSummaries(ctx, bson.M{}, opts)
}

// FindByIDs resolves list references. Missing ids are simply absent from
// the result; dangling references are the caller's normal case after a
// hard delete.
func (r *MovieRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Movie, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.findMovies(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
}

func (r *MovieRepository) Insert(ctx context.Context, m *models.Movie) error {
	res, err := r.col.InsertOne(ctx, m)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		m.ID = oid
	}
	return nil
}

// Update applies a partial $set and returns the updated document.
func (r *MovieRepository) Update(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.Movie, error) {
	update["updatedAt"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var m models.Movie
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": update}, opts).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &m, err
}

func (r *MovieRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *MovieRepository) IncViewCount(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"viewCount": 1}})
	return err
}

func (r *MovieRepository) IncDownloadCount(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"downloadCount": 1}})
	return err
}

func (r *MovieRepository) ListAllAdmin(ctx context.Context) ([]models.Movie, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.findMovies(ctx, bson.M{}, opts)
}

func (r *MovieRepository) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}

// TotalViews sums viewCount across the catalog.
func (r *MovieRepository) TotalViews(ctx context.Context) (int64, error) {
	cur, err := r.col.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$viewCount"}}}},
	})
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var row struct {
		Total int64 `bson:"total"`
	}
	if cur.Next(ctx) {
		if err := cur.Decode(&row); err != nil {
			return 0, err
		}
	}
	return row.Total, cur.Err()
}

func (r *MovieRepository) findMovies(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Movie, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Movie
	for cur.Next(ctx) {
		var m models.Movie
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, cur.Err()
}

func (r *MovieRepository) findSummaries(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.MovieSummary, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.MovieSummary
	for cur.Next(ctx) {
		var m models.MovieSummary
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, cur.Err()
}
