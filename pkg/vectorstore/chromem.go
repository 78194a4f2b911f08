package vectorstore

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/philippgille/chromem-go"
)

var _ Store = (*ChromemStore)(nil)

// ChromemStore keeps the corpus in a chromem collection, persisted under a directory
// when one is given. Each Replace writes a new generation named
// "<name>.<generation>.<count>" and only becomes visible once every document is stored.
type ChromemStore struct {
	db    *chromem.DB
	name  string
	embed chromem.EmbeddingFunc

	mu         sync.RWMutex
	active     string
	generation int
}

// NewChromemStore opens (or creates) a chromem database at path. An empty path keeps
// everything in memory.
func NewChromemStore(path, collectionName string) (*ChromemStore, error) {
	if collectionName == "" {
		return nil, fmt.Errorf("collection name must not be empty")
	}

	var db *chromem.DB
	if path == "" {
		db = chromem.NewDB()
	} else {
		var err error
		db, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, fmt.Errorf("failed to open vector store at %s: %w", path, err)
		}
	}

	s := &ChromemStore{db: db, name: collectionName}
	if err := s.loadActive(); err != nil {
		return nil, err
	}
	return s, nil
}

// loadActive selects the newest complete generation and drops the rest.
func (s *ChromemStore) loadActive() error {
	collections := s.db.ListCollections()

	for name, c := range collections {
		gen, count, ok := s.parseGeneration(name)
		if !ok || c.Count() != count {
			continue
		}
		if s.active == "" || gen > s.generation {
			s.active, s.generation = name, gen
		}
	}

	for name := range collections {
		if name == s.active {
			continue
		}
		if _, _, ok := s.parseGeneration(name); !ok && name != s.name {
			continue
		}
		if err := s.db.DeleteCollection(name); err != nil {
			return fmt.Errorf("failed to delete stale collection %s: %w", name, err)
		}
	}
	return nil
}

func (s *ChromemStore) parseGeneration(name string) (gen, count int, ok bool) {
	rest, found := strings.CutPrefix(name, s.name+".")
	if !found {
		return 0, 0, false
	}
	genPart, countPart, found := strings.Cut(rest, ".")
	if !found {
		return 0, 0, false
	}
	gen, err := strconv.Atoi(genPart)
	if err != nil {
		return 0, 0, false
	}
	count, err = strconv.Atoi(countPart)
	if err != nil {
		return 0, 0, false
	}
	return gen, count, true
}

// SetEmbeddingFunc sets the function chromem uses for documents stored without an
// embedding. Without one chromem falls back to its OpenAI default.
func (s *ChromemStore) SetEmbeddingFunc(f chromem.EmbeddingFunc) {
	s.embed = f
}

// DocumentID is the deterministic chromem ID of the chunk at position.
func DocumentID(position int) string {
	return fmt.Sprintf("chunk-%06d", position)
}

// Replace stores docs as a new generation and switches to it. The previous
// generation stays active if anything fails on the way.
func (s *ChromemStore) Replace(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return fmt.Errorf("no documents to store")
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to replace documents: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	gen := s.generation + 1
	name := fmt.Sprintf("%s.%d.%d", s.name, gen, len(docs))

	collection, err := s.db.CreateCollection(name, map[string]string{"hnsw:space": "cosine"}, s.embed)
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}

	chromemDocs := make([]chromem.Document, len(docs))
	for i, doc := range docs {
		metadata := make(map[string]string, len(doc.Metadata)+1)
		for k, v := range doc.Metadata {
			metadata[k] = fmt.Sprintf("%v", v)
		}
		metadata["position"] = strconv.Itoa(doc.Position)

		chromemDocs[i] = chromem.Document{
			ID:        DocumentID(doc.Position),
			Metadata:  metadata,
			Embedding: doc.Embedding,
			Content:   doc.Content,
		}
	}

	// AddDocuments returns nil when ctx is cancelled before any document starts
	err = collection.AddDocuments(ctx, chromemDocs, runtime.NumCPU())
	if err == nil {
		err = ctx.Err()
	}
	if err == nil && collection.Count() != len(docs) {
		err = fmt.Errorf("stored %d of %d documents", collection.Count(), len(docs))
	}
	if err != nil {
		if delErr := s.db.DeleteCollection(name); delErr != nil {
			return fmt.Errorf("failed to add documents: %w (cleanup: %v)", err, delErr)
		}
		return fmt.Errorf("failed to add documents: %w", err)
	}

	previous := s.active
	s.active, s.generation = name, gen
	if previous != "" {
		if err := s.db.DeleteCollection(previous); err != nil {
			return fmt.Errorf("failed to delete collection %s: %w", previous, err)
		}
	}
	return nil
}

func (s *ChromemStore) collection() *chromem.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == "" {
		return nil
	}
	return s.db.GetCollection(s.active, s.embed)
}

// SimilaritySearch returns up to topK documents by cosine similarity.
func (s *ChromemStore) SimilaritySearch(ctx context.Context, queryEmbedding []float32, topK int) ([]SimilaritySearchResult, error) {
	collection := s.collection()
	if collection == nil || collection.Count() == 0 {
		return nil, nil
	}

	// chromem rejects nResults larger than the collection
	if topK > collection.Count() {
		topK = collection.Count()
	}

	results, err := collection.QueryEmbedding(ctx, queryEmbedding, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to execute similarity search: %w", err)
	}

	out := make([]SimilaritySearchResult, 0, len(results))
	for _, r := range results {
		doc, err := fromChromem(r.ID, r.Content, r.Metadata)
		if err != nil {
			return nil, err
		}
		out = append(out, SimilaritySearchResult{Document: doc, Score: float64(r.Similarity)})
	}
	return out, nil
}

// Documents returns the persisted corpus in position order.
func (s *ChromemStore) Documents(ctx context.Context) ([]Document, error) {
	collection := s.collection()
	if collection == nil {
		return nil, nil
	}

	docs := make([]Document, 0, collection.Count())
	for i := 0; i < collection.Count(); i++ {
		d, err := collection.GetByID(ctx, DocumentID(i))
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", DocumentID(i), err)
		}
		doc, err := fromChromem(d.ID, d.Content, d.Metadata)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Position < docs[j].Position })
	return docs, nil
}

func fromChromem(id, content string, metadata map[string]string) (Document, error) {
	position, err := strconv.Atoi(metadata["position"])
	if err != nil {
		return Document{}, fmt.Errorf("document %s has no valid position: %w", id, err)
	}

	meta := make(map[string]interface{}, len(metadata))
	for k, v := range metadata {
		if k == "position" {
			continue
		}
		meta[k] = v
	}

	return Document{ID: id, Position: position, Content: content, Metadata: meta}, nil
}
