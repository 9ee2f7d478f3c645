package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// statsDoc userInfo 集合中的战绩文档
type statsDoc struct {
	Username string `bson:"username"`
	Win      int64  `bson:"win"`
	Loss     int64  `bson:"loss"`
}

// MongoStats 以 username 为键，$inc 累加 win/loss
type MongoStats struct {
	coll *mongo.Collection
}

// NewMongoStats 创建 MongoDB 战绩存储
func NewMongoStats(coll *mongo.Collection) *MongoStats {
	return &MongoStats{coll: coll}
}

// ConnectMongo 连接 MongoDB 并检查连通性
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb 连接错误: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb ping 错误: %w", err)
	}
	return client, nil
}

func (s *MongoStats) increment(ctx context.Context, userID, field string) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"username": userID},
		bson.M{"$inc": bson.M{field: 1}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("increment %s for %s: %w", field, userID, err)
	}
	return nil
}

// IncrementWins 胜场 +1
func (s *MongoStats) IncrementWins(ctx context.Context, userID string) error {
	return s.increment(ctx, userID, "win")
}

// IncrementLosses 负场 +1
func (s *MongoStats) IncrementLosses(ctx context.Context, userID string) error {
	return s.increment(ctx, userID, "loss")
}

// List 返回全部玩家战绩
func (s *MongoStats) List(ctx context.Context) ([]Record, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "username", Value: 1}}))
	if err != nil {
		return nil, err
	}

	var docs []statsDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	records := make([]Record, len(docs))
	for i, d := range docs {
		records[i] = Record{UserID: d.Username, Wins: d.Win, Losses: d.Loss}
	}
	return records, nil
}
