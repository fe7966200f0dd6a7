package milvus

import (
	"context"
	"fmt"
	"strconv"

	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/index"
	"github.com/milvus-io/milvus/client/v2/milvusclient"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Field names of the chunk schema.
const (
	fieldID         = "id"
	fieldRow        = "row"
	fieldSeq        = "seq"
	fieldSource     = "source"
	fieldFilePath   = "file_path"
	fieldTotalPages = "total_pages"
	fieldOffset     = "char_offset"
	fieldContent    = "content"
	fieldPageRef    = "page_reference"
	fieldVector     = "vector"
)

var outputFields = []string{
	fieldID, fieldSeq, fieldSource, fieldFilePath, fieldTotalPages,
	fieldOffset, fieldContent, fieldPageRef,
}

// hit is one search result row.
type hit struct {
	chunk domain.Chunk
	score float32
}

// backend is the subset of Milvus operations the store needs.
type backend interface {
	HasCollection(ctx context.Context, name string) (bool, error)
	CreateCollection(ctx context.Context, name, description string, dim int) error
	Insert(ctx context.Context, name string, dim, firstRow int, chunks []domain.Chunk) error
	Flush(ctx context.Context, name string) error
	CreateIndex(ctx context.Context, name string) error
	Load(ctx context.Context, name string) error
	Drop(ctx context.Context, name string) error
	Rename(ctx context.Context, from, to string) error
	Description(ctx context.Context, name string) (string, error)
	Search(ctx context.Context, name string, vector []float32, k int, expr string) ([]hit, error)
	Query(ctx context.Context, name string, fromRow, toRow int) ([]domain.Chunk, error)
	Close(ctx context.Context) error
}

// clientBackend implements backend with the Milvus v2 client.
type clientBackend struct {
	client *milvusclient.Client
}

func dial(ctx context.Context, address string) (*clientBackend, error) {
	client, err := milvusclient.New(ctx, &milvusclient.ClientConfig{Address: address})
	if err != nil {
		return nil, fmt.Errorf("connecting to milvus at %s: %w", address, err)
	}
	return &clientBackend{client: client}, nil
}

func (b *clientBackend) HasCollection(ctx context.Context, name string) (bool, error) {
	return b.client.HasCollection(ctx, milvusclient.NewHasCollectionOption(name))
}

func (b *clientBackend) CreateCollection(ctx context.Context, name, description string, dim int) error {
	schema := &entity.Schema{
		CollectionName: name,
		Description:    description,
		Fields: []*entity.Field{
			{
				Name:       fieldID,
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{"max_length": "1024"},
			},
			{Name: fieldRow, DataType: entity.FieldTypeInt64},
			{Name: fieldSeq, DataType: entity.FieldTypeInt64},
			{
				Name:       fieldSource,
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "512"},
			},
			{
				Name:       fieldFilePath,
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "2048"},
			},
			{Name: fieldTotalPages, DataType: entity.FieldTypeInt64},
			{Name: fieldOffset, DataType: entity.FieldTypeInt64},
			{
				Name:       fieldContent,
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "65535"},
			},
			{
				Name:       fieldPageRef,
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "64"},
			},
			{
				Name:       fieldVector,
				DataType:   entity.FieldTypeFloatVector,
				TypeParams: map[string]string{"dim": strconv.Itoa(dim)},
			},
		},
	}

	opt := milvusclient.NewCreateCollectionOption(name, schema)
	opt.WithShardNum(1)
	return b.client.CreateCollection(ctx, opt)
}

// Insert writes chunks as rows firstRow, firstRow+1, ... of the collection.
func (b *clientBackend) Insert(ctx context.Context, name string, dim, firstRow int, chunks []domain.Chunk) error {
	n := len(chunks)
	ids := make([]string, n)
	rows := make([]int64, n)
	seqs := make([]int64, n)
	sources := make([]string, n)
	paths := make([]string, n)
	pages := make([]int64, n)
	offsets := make([]int64, n)
	contents := make([]string, n)
	refs := make([]string, n)
	vectors := make([][]float32, n)

	for i, c := range chunks {
		ids[i] = c.ID
		rows[i] = int64(firstRow + i)
		seqs[i] = int64(c.Index)
		sources[i] = c.Source
		paths[i] = c.FilePath
		pages[i] = int64(c.TotalPages)
		offsets[i] = int64(c.Offset)
		contents[i] = c.Content
		refs[i] = c.PageReference
		vectors[i] = c.Embedding
	}

	opt := milvusclient.NewColumnBasedInsertOption(name).
		WithVarcharColumn(fieldID, ids).
		WithInt64Column(fieldRow, rows).
		WithInt64Column(fieldSeq, seqs).
		WithVarcharColumn(fieldSource, sources).
		WithVarcharColumn(fieldFilePath, paths).
		WithInt64Column(fieldTotalPages, pages).
		WithInt64Column(fieldOffset, offsets).
		WithVarcharColumn(fieldContent, contents).
		WithVarcharColumn(fieldPageRef, refs).
		WithFloatVectorColumn(fieldVector, dim, vectors)

	_, err := b.client.Insert(ctx, opt)
	return err
}

func (b *clientBackend) Flush(ctx context.Context, name string) error {
	task, err := b.client.Flush(ctx, milvusclient.NewFlushOption(name))
	if err != nil {
		return err
	}
	return task.Await(ctx)
}

func (b *clientBackend) CreateIndex(ctx context.Context, name string) error {
	idx := index.NewHNSWIndex(entity.COSINE, 16, 200)
	task, err := b.client.CreateIndex(ctx, milvusclient.NewCreateIndexOption(name, fieldVector, idx))
	if err != nil {
		return err
	}
	return task.Await(ctx)
}

func (b *clientBackend) Load(ctx context.Context, name string) error {
	task, err := b.client.LoadCollection(ctx, milvusclient.NewLoadCollectionOption(name))
	if err != nil {
		return err
	}
	return task.Await(ctx)
}

func (b *clientBackend) Drop(ctx context.Context, name string) error {
	return b.client.DropCollection(ctx, milvusclient.NewDropCollectionOption(name))
}

func (b *clientBackend) Rename(ctx context.Context, from, to string) error {
	return b.client.RenameCollection(ctx, milvusclient.NewRenameCollectionOption(from, to))
}

func (b *clientBackend) Description(ctx context.Context, name string) (string, error) {
	coll, err := b.client.DescribeCollection(ctx, milvusclient.NewDescribeCollectionOption(name))
	if err != nil {
		return "", err
	}
	if coll.Schema == nil {
		return "", nil
	}
	return coll.Schema.Description, nil
}

func (b *clientBackend) Search(ctx context.Context, name string, vector []float32, k int, expr string) ([]hit, error) {
	opt := milvusclient.NewSearchOption(name, k, []entity.Vector{entity.FloatVector(vector)}).
		WithANNSField(fieldVector).
		WithOutputFields(outputFields...)
	if expr != "" {
		opt = opt.WithFilter(expr)
	}

	sets, err := b.client.Search(ctx, opt)
	if err != nil {
		return nil, err
	}

	var hits []hit
	for _, rs := range sets {
		for i := 0; i < rs.ResultCount; i++ {
			c, err := chunkAt(rs, i)
			if err != nil {
				return nil, err
			}
			var score float32
			if i < len(rs.Scores) {
				score = rs.Scores[i]
			}
			hits = append(hits, hit{chunk: c, score: score})
		}
	}
	return hits, nil
}

// Query returns the rows in [fromRow, toRow). The window must stay within
// the server's query result limit.
func (b *clientBackend) Query(ctx context.Context, name string, fromRow, toRow int) ([]domain.Chunk, error) {
	opt := milvusclient.NewQueryOption(name).
		WithFilter(fmt.Sprintf("%s >= %d && %s < %d", fieldRow, fromRow, fieldRow, toRow)).
		WithOutputFields(append([]string{fieldVector}, outputFields...)...).
		WithLimit(toRow - fromRow)

	rs, err := b.client.Query(ctx, opt)
	if err != nil {
		return nil, err
	}

	var vectors [][]float32
	if col, ok := rs.GetColumn(fieldVector).(*column.ColumnFloatVector); ok {
		for _, v := range col.Data() {
			vectors = append(vectors, []float32(v))
		}
	}

	chunks := make([]domain.Chunk, 0, rs.ResultCount)
	for i := 0; i < rs.ResultCount; i++ {
		c, err := chunkAt(rs, i)
		if err != nil {
			return nil, err
		}
		if i < len(vectors) {
			c.Embedding = vectors[i]
		}
		chunks = append(chunks, c)
	}
	return chunks, nil
}

func (b *clientBackend) Close(ctx context.Context) error {
	return b.client.Close(ctx)
}

// chunkAt reads row i of a result set into a chunk.
func chunkAt(rs milvusclient.ResultSet, i int) (domain.Chunk, error) {
	var c domain.Chunk
	var err error

	str := func(field string) string {
		if err != nil {
			return ""
		}
		col := rs.GetColumn(field)
		if col == nil {
			err = fmt.Errorf("column %s missing from result", field)
			return ""
		}
		var v string
		v, err = col.GetAsString(i)
		return v
	}
	num := func(field string) int {
		if err != nil {
			return 0
		}
		col := rs.GetColumn(field)
		if col == nil {
			err = fmt.Errorf("column %s missing from result", field)
			return 0
		}
		var v int64
		v, err = col.GetAsInt64(i)
		return int(v)
	}

	c.ID = str(fieldID)
	c.Index = num(fieldSeq)
	c.Source = str(fieldSource)
	c.FilePath = str(fieldFilePath)
	c.TotalPages = num(fieldTotalPages)
	c.Offset = num(fieldOffset)
	c.Content = str(fieldContent)
	c.PageReference = str(fieldPageRef)

	if err != nil {
		return domain.Chunk{}, fmt.Errorf("reading row %d: %w", i, err)
	}
	return c, nil
}
