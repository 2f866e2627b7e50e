// Package catalog reads the trip, hotel, car, place and recommendation catalogs from MongoDB.
//
// Each catalog is one collection; documents are keyed by their catalog reference in _id.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/catalog"
)

const (
	TripsCollection           = "trips"
	HotelsCollection          = "hotels"
	CarsCollection            = "cars"
	POIsCollection            = "pois"
	RecommendationsCollection = "recommendations"
)

// Connect opens a client for uri and pings the primary.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetConnectTimeout(10*time.Second))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// Reader is a MongoDB implementation of catalog.Reader.
type Reader struct {
	db *mongo.Database
}

func NewReader(db *mongo.Database) *Reader {
	return &Reader{db: db}
}

func (r *Reader) Trip(ctx context.Context, ref domain.CatalogRef) (domain.TripOffer, error) {
	var doc tripDoc
	if err := r.findOne(ctx, TripsCollection, ref, &doc); err != nil {
		return domain.TripOffer{}, err
	}
	return doc.toDomain(), nil
}

func (r *Reader) Hotel(ctx context.Context, ref domain.CatalogRef) (domain.HotelOffer, error) {
	var doc hotelDoc
	if err := r.findOne(ctx, HotelsCollection, ref, &doc); err != nil {
		return domain.HotelOffer{}, err
	}
	return doc.toDomain(), nil
}

func (r *Reader) Car(ctx context.Context, ref domain.CatalogRef) (domain.CarOffer, error) {
	var doc carDoc
	if err := r.findOne(ctx, CarsCollection, ref, &doc); err != nil {
		return domain.CarOffer{}, err
	}
	return doc.toDomain(), nil
}

func (r *Reader) PointOfInterest(ctx context.Context, ref domain.CatalogRef) (domain.PointOfInterest, error) {
	var doc poiDoc
	if err := r.findOne(ctx, POIsCollection, ref, &doc); err != nil {
		return domain.PointOfInterest{}, err
	}
	return doc.toDomain(), nil
}

func (r *Reader) Recommendation(ctx context.Context, ref domain.CatalogRef) (domain.Recommendation, error) {
	var doc recommendationDoc
	if err := r.findOne(ctx, RecommendationsCollection, ref, &doc); err != nil {
		return domain.Recommendation{}, err
	}
	return doc.toDomain(), nil
}

func (r *Reader) findOne(ctx context.Context, coll string, ref domain.CatalogRef, out any) error {
	if r.db == nil {
		return errors.New("nil mongo database")
	}
	err := r.db.Collection(coll).FindOne(ctx, bson.M{"_id": string(ref)}).Decode(out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return catalog.ErrNotFound
		}
		return fmt.Errorf("find %s %s: %w", coll, ref, err)
	}
	return nil
}
