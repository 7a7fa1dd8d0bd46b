package matches

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mcdev12/friendlies/go/internal/models"
	"github.com/mcdev12/friendlies/go/internal/mongoutil"
)

const matchRequestsCollection = "match_requests"

// matchRequestDocument is the stored shape of a match request
type matchRequestDocument struct {
	ID           string     `bson:"_id"`
	Seq          int64      `bson:"seq"`
	FromTeamID   string     `bson:"from_team_id"`
	ToTeamID     string     `bson:"to_team_id"`
	ProposedDate string     `bson:"proposed_date"`
	ProposedTime string     `bson:"proposed_time"`
	Venue        string     `bson:"venue"`
	MatchType    string     `bson:"match_type"`
	Message      *string    `bson:"message,omitempty"`
	Status       string     `bson:"status"`
	Result       *string    `bson:"result,omitempty"`
	CreatedAt    time.Time  `bson:"created_at"`
	RespondedAt  *time.Time `bson:"responded_at,omitempty"`
	CompletedAt  *time.Time `bson:"completed_at,omitempty"`
}

// MongoRepository implements match request data access on a MongoDB collection
type MongoRepository struct {
	collection *mongo.Collection
	seq        *mongoutil.Sequence
}

// NewMongoRepository creates a match request repository backed by db
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		collection: db.Collection(matchRequestsCollection),
		seq:        mongoutil.NewSequence(db, matchRequestsCollection),
	}
}

var _ MatchesRepository = (*MongoRepository)(nil)

// EnsureIndexes creates the indexes used by the per-team listing
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "seq", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "from_team_id", Value: 1}, {Key: "created_at", Value: 1}, {Key: "seq", Value: 1}}},
		{Keys: bson.D{{Key: "to_team_id", Value: 1}, {Key: "created_at", Value: 1}, {Key: "seq", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create match request indexes: %w", err)
	}
	return nil
}

// CreateMatchRequest inserts a request stamped with the next insertion sequence number
func (r *MongoRepository) CreateMatchRequest(ctx context.Context, req *models.MatchRequest) error {
	seq, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}

	doc := matchRequestDocument{
		ID:           req.ID.String(),
		Seq:          seq,
		FromTeamID:   req.FromTeamID.String(),
		ToTeamID:     req.ToTeamID.String(),
		ProposedDate: req.ProposedDate.String(),
		ProposedTime: req.ProposedTime.String(),
		Venue:        req.Venue,
		MatchType:    string(req.MatchType),
		Message:      req.Message,
		Status:       string(req.Status),
		Result:       req.Result,
		CreatedAt:    req.CreatedAt,
		RespondedAt:  req.RespondedAt,
		CompletedAt:  req.CompletedAt,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert match request: %w", err)
	}
	return nil
}

// GetMatchRequest retrieves a match request by ID
func (r *MongoRepository) GetMatchRequest(ctx context.Context, id uuid.UUID) (*models.MatchRequest, error) {
	var doc matchRequestDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &models.NotFoundError{Resource: "match request", ID: id}
		}
		return nil, fmt.Errorf("failed to get match request: %w", err)
	}
	return docToMatchRequest(doc)
}

// TransitionMatchRequest applies the update with the expected status in the filter, so
// the server lets only one concurrent caller match
func (r *MongoRepository) TransitionMatchRequest(ctx context.Context, t Transition) (*models.MatchRequest, error) {
	set := bson.M{"status": string(t.To)}
	if t.From == models.MatchStatusPending {
		set["responded_at"] = t.At
	}
	if t.To == models.MatchStatusCompleted {
		set["completed_at"] = t.At
		if t.Result != nil {
			set["result"] = *t.Result
		}
	}

	var doc matchRequestDocument
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": t.RequestID.String(), "status": string(t.From)},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err == nil {
		return docToMatchRequest(doc)
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to update match request: %w", err)
	}

	current, err := r.GetMatchRequest(ctx, t.RequestID)
	if err != nil {
		return nil, err
	}
	return nil, &models.InvalidTransitionError{RequestID: t.RequestID, From: current.Status, To: t.To}
}

// ListMatchRequestsForTeam returns the team's requests oldest first
func (r *MongoRepository) ListMatchRequestsForTeam(ctx context.Context, teamID uuid.UUID, status *models.MatchStatus) ([]models.MatchRequest, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"from_team_id": teamID.String()},
		bson.M{"to_team_id": teamID.String()},
	}}
	if status != nil {
		filter["status"] = string(*status)
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "seq", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query match requests: %w", err)
	}

	var docs []matchRequestDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode match requests: %w", err)
	}

	reqs := make([]models.MatchRequest, 0, len(docs))
	for _, doc := range docs {
		req, err := docToMatchRequest(doc)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, *req)
	}
	return reqs, nil
}

// CountMatchRequests counts requests, optionally only those in status
func (r *MongoRepository) CountMatchRequests(ctx context.Context, status *models.MatchStatus) (int, error) {
	filter := bson.M{}
	if status != nil {
		filter["status"] = string(*status)
	}
	n, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count match requests: %w", err)
	}
	return int(n), nil
}

func docToMatchRequest(doc matchRequestDocument) (*models.MatchRequest, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid match request id %q: %w", doc.ID, err)
	}
	from, err := uuid.Parse(doc.FromTeamID)
	if err != nil {
		return nil, fmt.Errorf("invalid from_team_id on %s: %w", doc.ID, err)
	}
	to, err := uuid.Parse(doc.ToTeamID)
	if err != nil {
		return nil, fmt.Errorf("invalid to_team_id on %s: %w", doc.ID, err)
	}
	date, err := models.ParseDate(doc.ProposedDate)
	if err != nil {
		return nil, fmt.Errorf("stored match request %s: %w", doc.ID, err)
	}
	tod, err := models.ParseTimeOfDay(doc.ProposedTime)
	if err != nil {
		return nil, fmt.Errorf("stored match request %s: %w", doc.ID, err)
	}

	return &models.MatchRequest{
		ID:           id,
		FromTeamID:   from,
		ToTeamID:     to,
		ProposedDate: date,
		ProposedTime: tod,
		Venue:        doc.Venue,
		MatchType:    models.MatchType(doc.MatchType),
		Message:      doc.Message,
		Status:       models.MatchStatus(doc.Status),
		Result:       doc.Result,
		CreatedAt:    doc.CreatedAt.UTC(),
		RespondedAt:  utcPtr(doc.RespondedAt),
		CompletedAt:  utcPtr(doc.CompletedAt),
	}, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
