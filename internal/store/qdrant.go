// Package store implements the vector store on Qdrant over gRPC.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/sortphy/chatgpdune/internal/domain"
)

const defaultDialTimeout = 30 * time.Second

var waitUpsert = true

type QdrantStore struct {
	points     pb.PointsClient
	conn       *grpc.ClientConn
	collection string
	vectorDim  uint64
}

func NewQdrantStore(url, collection string, vectorDim int) (*QdrantStore, error) {
	if collection == "" {
		return nil, fmt.Errorf("%w: empty collection name", domain.ErrInvalidInput)
	}
	if vectorDim <= 0 {
		return nil, fmt.Errorf("%w: vector dimension must be positive", domain.ErrInvalidInput)
	}

	url = strings.TrimPrefix(url, "http://")
	url = strings.TrimPrefix(url, "https://")

	ctx, cancel := context.WithTimeout(context.Background(), defaultDialTimeout)
	defer cancel()

	conn, err := grpc.DialContext(ctx, url, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to qdrant: %v", domain.ErrServiceUnavailable, err)
	}

	s := &QdrantStore{
		points:     pb.NewPointsClient(conn),
		conn:       conn,
		collection: collection,
		vectorDim:  uint64(vectorDim),
	}

	if err := s.ensureCollection(ctx, pb.NewCollectionsClient(conn)); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return s, nil
}

func (s *QdrantStore) ensureCollection(ctx context.Context, client pb.CollectionsClient) error {
	listResp, err := client.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("%w: failed to list collections: %v", domain.ErrVectorStoreFailed, err)
	}

	for _, col := range listResp.Collections {
		if col.Name == s.collection {
			return nil
		}
	}

	_, err = client.Create(ctx, &pb.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     s.vectorDim,
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: failed to create collection: %v", domain.ErrVectorStoreFailed, err)
	}

	return nil
}

func (s *QdrantStore) Store(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	points := make([]*pb.PointStruct, 0, len(chunks))
	for _, chunk := range chunks {
		if len(chunk.Vector) == 0 {
			continue
		}

		pointID := chunk.ID
		if pointID == "" {
			pointID = uuid.New().String()
		} else if _, err := uuid.Parse(pointID); err != nil {
			// Qdrant point IDs must be UUIDs; derive one deterministically
			// so re-ingesting the same chunk overwrites it.
			pointID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(chunk.ID)).String()
		}

		vector := make([]float32, len(chunk.Vector))
		for i, v := range chunk.Vector {
			vector[i] = float32(v)
		}

		payload := map[string]*pb.Value{
			"content":  {Kind: &pb.Value_StringValue{StringValue: chunk.Content}},
			"doc_id":   {Kind: &pb.Value_StringValue{StringValue: chunk.DocumentID}},
			"chunk_id": {Kind: &pb.Value_StringValue{StringValue: chunk.ID}},
		}
		for k, v := range chunk.Metadata {
			if strVal, ok := v.(string); ok {
				payload[k] = &pb.Value{Kind: &pb.Value_StringValue{StringValue: strVal}}
			}
		}

		points = append(points, &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{Uuid: pointID},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: vector},
				},
			},
			Payload: payload,
		})
	}

	_, err := s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
		Wait:           &waitUpsert,
	})
	if err != nil {
		return fmt.Errorf("%w: upsert failed: %v", domain.ErrVectorStoreFailed, err)
	}

	return nil
}

func (s *QdrantStore) Search(ctx context.Context, vector []float64, topK int) ([]domain.Chunk, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", domain.ErrInvalidInput)
	}
	if topK <= 0 {
		topK = 5
	}

	queryVector := make([]float32, len(vector))
	for i, v := range vector {
		queryVector[i] = float32(v)
	}

	searchResp, err := s.points.Search(ctx, &pb.SearchPoints{
		CollectionName: s.collection,
		Vector:         queryVector,
		Limit:          uint64(topK),
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: search failed: %v", domain.ErrVectorStoreFailed, err)
	}

	chunks := make([]domain.Chunk, 0, len(searchResp.Result))
	for _, point := range searchResp.Result {
		chunk := domain.Chunk{
			ID:       point.Id.GetUuid(),
			Score:    float64(point.Score),
			Metadata: make(map[string]interface{}),
		}

		for k, v := range point.Payload {
			switch k {
			case "content":
				chunk.Content = v.GetStringValue()
			case "doc_id":
				chunk.DocumentID = v.GetStringValue()
			case "chunk_id":
				if id := v.GetStringValue(); id != "" {
					chunk.ID = id
				}
			default:
				chunk.Metadata[k] = v.GetStringValue()
			}
		}

		chunks = append(chunks, chunk)
	}

	return chunks, nil
}

func (s *QdrantStore) Delete(ctx context.Context, documentID string) error {
	if documentID == "" {
		return fmt.Errorf("%w: empty document ID", domain.ErrInvalidInput)
	}

	_, err := s.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: s.collection,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Filter{
				Filter: &pb.Filter{
					Must: []*pb.Condition{{
						ConditionOneOf: &pb.Condition_Field{
							Field: &pb.FieldCondition{
								Key: "doc_id",
								Match: &pb.Match{
									MatchValue: &pb.Match_Text{Text: documentID},
								},
							},
						},
					}},
				},
			},
		},
		Wait: &waitUpsert,
	})
	if err != nil {
		return fmt.Errorf("%w: delete failed: %v", domain.ErrVectorStoreFailed, err)
	}

	return nil
}

// Reset drops and recreates the collection; recreating is the reliable way
// to clear every point in Qdrant.
func (s *QdrantStore) Reset(ctx context.Context) error {
	collections := pb.NewCollectionsClient(s.conn)

	if _, err := collections.Delete(ctx, &pb.DeleteCollection{CollectionName: s.collection}); err != nil {
		return fmt.Errorf("%w: failed to drop collection: %v", domain.ErrVectorStoreFailed, err)
	}

	return s.ensureCollection(ctx, collections)
}

func (s *QdrantStore) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
