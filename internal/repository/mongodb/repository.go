package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/MagetoJ/AviTrack/internal/domain/models"
)

const (
	batchesColl    = "batches"
	treatmentsColl = "treatments"
	dailyColl      = "daily_entries"
	slaughterColl  = "slaughters"
	checkInsColl   = "check_ins"
	staffColl      = "staff"
	customersColl  = "customers"
	ordersColl     = "orders"
	reportsColl    = "flock_reports"
)

// MongoDBRepository stores every AviTrack entity in MongoDB.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	registry *bsoncodec.Registry
	logger   *zap.Logger
}

// NewMongoDBRepository connects to MongoDB and verifies the connection.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return newRepository(client, dbName, logger), nil
}

func newRepository(client *mongo.Client, dbName string, logger *zap.Logger) *MongoDBRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		registry: newRegistry(),
		logger:   logger,
	}
}

func (r *MongoDBRepository) coll(name string) *mongo.Collection {
	return r.client.Database(r.dbName).Collection(name, options.Collection().SetRegistry(r.registry))
}

// EnsureIndexes creates the unique keys batches and treatment cases rely on.
func (r *MongoDBRepository) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	indexes := map[string]mongo.IndexModel{
		batchesColl:    {Keys: bson.D{{Key: "batch_id", Value: 1}}, Options: unique},
		treatmentsColl: {Keys: bson.D{{Key: "case_id", Value: 1}}, Options: unique},
		checkInsColl:   {Keys: bson.D{{Key: "at", Value: 1}}},
	}
	for coll, model := range indexes {
		if _, err := r.coll(coll).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("create index on %s: %w", coll, err)
		}
	}
	return nil
}

// ListBatches returns all batches ordered by hatch date.
func (r *MongoDBRepository) ListBatches(ctx context.Context) ([]models.Batch, error) {
	opts := options.Find().SetSort(bson.D{{Key: "hatch_date", Value: 1}, {Key: "batch_id", Value: 1}})
	var out []models.Batch
	if err := r.findAll(ctx, batchesColl, bson.D{}, opts, &out); err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return out, nil
}

// GetBatch fetches one batch by ID.
func (r *MongoDBRepository) GetBatch(ctx context.Context, batchID string) (models.Batch, error) {
	var b models.Batch
	if err := r.findOne(ctx, batchesColl, bson.D{{Key: "batch_id", Value: batchID}}, &b); err != nil {
		return models.Batch{}, fmt.Errorf("get batch %s: %w", batchID, err)
	}
	return b, nil
}

// CreateBatch inserts a new batch.
func (r *MongoDBRepository) CreateBatch(ctx context.Context, batch models.Batch) error {
	if _, err := r.coll(batchesColl).InsertOne(ctx, batch); err != nil {
		return fmt.Errorf("failed to insert batch: %w", err)
	}
	return nil
}

// ApplyBatchDelta changes batch counters in one findAndModify. The filter
// carries the delta's guards and the update is an aggregation pipeline, so
// concurrent entries never overwrite each other and the mortality rate is
// recomputed from the stored counts in the same write.
func (r *MongoDBRepository) ApplyBatchDelta(ctx context.Context, batchID string, d models.BatchDelta) (models.Batch, error) {
	filter := bson.D{{Key: "batch_id", Value: batchID}}
	if d.Live < 0 {
		filter = append(filter, bson.E{Key: "live_count", Value: bson.D{{Key: "$gte", Value: -d.Live}}})
	}
	if d.MinAvailable > 0 {
		filter = append(filter, bson.E{Key: "$expr", Value: bson.D{{Key: "$gte", Value: bson.A{
			bson.D{{Key: "$subtract", Value: bson.A{"$live_count", bson.D{{Key: "$ifNull", Value: bson.A{"$isolated_count", 0}}}}}},
			d.MinAvailable,
		}}}})
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var b models.Batch
	err := r.coll(batchesColl).FindOneAndUpdate(ctx, filter, batchDeltaPipeline(d), opts).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Either the batch is gone or a guard failed.
		if _, getErr := r.GetBatch(ctx, batchID); getErr != nil {
			return models.Batch{}, getErr
		}
		return models.Batch{}, fmt.Errorf("apply delta to batch %s: %w", batchID, models.ErrConflict)
	}
	if err != nil {
		return models.Batch{}, fmt.Errorf("failed to update batch %s: %w", batchID, err)
	}
	return b, nil
}

func batchDeltaPipeline(d models.BatchDelta) mongo.Pipeline {
	counters := bson.D{
		{Key: "live_count", Value: bson.D{{Key: "$add", Value: bson.A{"$live_count", d.Live}}}},
		{Key: "isolated_count", Value: bson.D{{Key: "$max", Value: bson.A{0, bson.D{{Key: "$add", Value: bson.A{
			bson.D{{Key: "$ifNull", Value: bson.A{"$isolated_count", 0}}}, d.Isolated,
		}}}}}}},
		{Key: "dead_count", Value: bson.D{{Key: "$add", Value: bson.A{
			bson.D{{Key: "$ifNull", Value: bson.A{"$dead_count", 0}}}, d.Dead,
		}}}},
	}
	if d.WithdrawalEnd != nil {
		// $max ignores a missing end date.
		counters = append(counters, bson.E{Key: "withdrawal_end_date", Value: bson.D{{Key: "$max", Value: bson.A{"$withdrawal_end_date", *d.WithdrawalEnd}}}})
	}
	if d.StartMedication {
		counters = append(counters, bson.E{Key: "medication_active", Value: true})
	}

	derived := bson.D{
		{Key: "mortality_rate", Value: bson.D{{Key: "$cond", Value: bson.A{
			bson.D{{Key: "$gt", Value: bson.A{bson.D{{Key: "$ifNull", Value: bson.A{"$initial_count", 0}}}, 0}}},
			bson.D{{Key: "$multiply", Value: bson.A{bson.D{{Key: "$divide", Value: bson.A{"$dead_count", "$initial_count"}}}, 100}}},
			"$mortality_rate",
		}}}},
	}
	if d.CloseWhenEmpty {
		derived = append(derived, bson.E{Key: "status", Value: bson.D{{Key: "$cond", Value: bson.A{
			bson.D{{Key: "$eq", Value: bson.A{"$live_count", 0}}},
			string(models.BatchClosed),
			"$status",
		}}}})
	}

	return mongo.Pipeline{
		{{Key: "$set", Value: counters}},
		{{Key: "$set", Value: derived}},
	}
}

// ListTreatments returns every treatment record ordered by isolation date.
func (r *MongoDBRepository) ListTreatments(ctx context.Context) ([]models.TreatmentRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "isolation_date", Value: 1}})
	var out []models.TreatmentRecord
	if err := r.findAll(ctx, treatmentsColl, bson.D{}, opts, &out); err != nil {
		return nil, fmt.Errorf("list treatments: %w", err)
	}
	return out, nil
}

// ListTreatmentsByFlock returns the treatment records of one batch.
func (r *MongoDBRepository) ListTreatmentsByFlock(ctx context.Context, flockID string) ([]models.TreatmentRecord, error) {
	var out []models.TreatmentRecord
	if err := r.findAll(ctx, treatmentsColl, bson.D{{Key: "flock_id", Value: flockID}}, options.Find(), &out); err != nil {
		return nil, fmt.Errorf("list treatments of %s: %w", flockID, err)
	}
	return out, nil
}

// GetTreatment fetches one treatment case.
func (r *MongoDBRepository) GetTreatment(ctx context.Context, caseID string) (models.TreatmentRecord, error) {
	var rec models.TreatmentRecord
	if err := r.findOne(ctx, treatmentsColl, bson.D{{Key: "case_id", Value: caseID}}, &rec); err != nil {
		return models.TreatmentRecord{}, fmt.Errorf("get treatment %s: %w", caseID, err)
	}
	return rec, nil
}

// SaveTreatments inserts new treatment cases.
func (r *MongoDBRepository) SaveTreatments(ctx context.Context, records []models.TreatmentRecord) error {
	if len(records) == 0 {
		return nil
	}
	docs := make([]interface{}, len(records))
	for i := range records {
		docs[i] = records[i]
	}
	if _, err := r.coll(treatmentsColl).InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert treatments: %w", err)
	}
	return nil
}

// UpdateTreatment replaces a stored treatment case.
func (r *MongoDBRepository) UpdateTreatment(ctx context.Context, record models.TreatmentRecord) error {
	res, err := r.coll(treatmentsColl).ReplaceOne(ctx, bson.D{{Key: "case_id", Value: record.CaseID}}, record)
	if err != nil {
		return fmt.Errorf("failed to update treatment %s: %w", record.CaseID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update treatment %s: %w", record.CaseID, models.ErrNotFound)
	}
	return nil
}

// SaveDailyEntry stores a daily shed log.
func (r *MongoDBRepository) SaveDailyEntry(ctx context.Context, entry models.DailyEntry) error {
	return r.insert(ctx, dailyColl, entry)
}

// SaveSlaughter stores a slaughter record.
func (r *MongoDBRepository) SaveSlaughter(ctx context.Context, entry models.SlaughterEntry) error {
	return r.insert(ctx, slaughterColl, entry)
}

// GetStaff fetches a staff member.
func (r *MongoDBRepository) GetStaff(ctx context.Context, id string) (models.Staff, error) {
	var s models.Staff
	if err := r.findOne(ctx, staffColl, bson.D{{Key: "_id", Value: id}}, &s); err != nil {
		return models.Staff{}, fmt.Errorf("get staff %s: %w", id, err)
	}
	return s, nil
}

// SaveCheckIn stores a check-in event.
func (r *MongoDBRepository) SaveCheckIn(ctx context.Context, checkIn models.CheckIn) error {
	return r.insert(ctx, checkInsColl, checkIn)
}

// ListCheckIns returns check-ins at or after since.
func (r *MongoDBRepository) ListCheckIns(ctx context.Context, since time.Time) ([]models.CheckIn, error) {
	filter := bson.D{{Key: "at", Value: bson.D{{Key: "$gte", Value: since}}}}
	var out []models.CheckIn
	if err := r.findAll(ctx, checkInsColl, filter, options.Find().SetSort(bson.D{{Key: "at", Value: 1}}), &out); err != nil {
		return nil, fmt.Errorf("list check-ins: %w", err)
	}
	return out, nil
}

// GetCustomer fetches a customer.
func (r *MongoDBRepository) GetCustomer(ctx context.Context, id string) (models.Customer, error) {
	var c models.Customer
	if err := r.findOne(ctx, customersColl, bson.D{{Key: "_id", Value: id}}, &c); err != nil {
		return models.Customer{}, fmt.Errorf("get customer %s: %w", id, err)
	}
	return c, nil
}

// SaveOrder stores a customer order.
func (r *MongoDBRepository) SaveOrder(ctx context.Context, order models.Order) error {
	return r.insert(ctx, ordersColl, order)
}

// SaveFlockHealthReport stores a daily health snapshot.
func (r *MongoDBRepository) SaveFlockHealthReport(ctx context.Context, report models.FlockHealthReport) error {
	return r.insert(ctx, reportsColl, report)
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoDBRepository) insert(ctx context.Context, coll string, doc interface{}) error {
	if _, err := r.coll(coll).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", coll, err)
	}
	r.logger.Debug("document inserted", zap.String("collection", coll))
	return nil
}

func (r *MongoDBRepository) findOne(ctx context.Context, coll string, filter bson.D, out interface{}) error {
	err := r.coll(coll).FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ErrNotFound
	}
	return err
}

func (r *MongoDBRepository) findAll(ctx context.Context, coll string, filter bson.D, opts *options.FindOptions, out interface{}) error {
	cur, err := r.coll(coll).Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}
