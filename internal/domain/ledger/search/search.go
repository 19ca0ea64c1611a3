// Package search is an in-memory full-text index over ledger lines, so
// records can be found by words from the original sentence ("乔迁", "回礼")
// as well as by exact contact or event.
package search

import (
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/cjk"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/FACorreiaa/gift-ledger/internal/domain/intent"
	"github.com/FACorreiaa/gift-ledger/internal/domain/ledger/repository"
)

const defaultLimit = 10

// Document is one indexed ledger line.
type Document struct {
	ID      string  `json:"id"`
	Type    string  `json:"type"`
	Contact string  `json:"contact"`
	Event   string  `json:"event"`
	Payment string  `json:"payment"`
	Date    string  `json:"date"`
	Amount  float64 `json:"amount"`
	Text    string  `json:"text"` // source sentence plus notes
}

// Hit is a search result.
type Hit struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"`
}

// DocumentFromIntent builds a document for a parsed sentence.
func DocumentFromIntent(id, source string, p *intent.ParsedIntent) Document {
	return Document{
		ID:      id,
		Type:    string(p.Type),
		Contact: p.ContactName,
		Event:   p.EventName,
		Payment: p.PaymentMethod,
		Date:    p.RecordDate,
		Amount:  p.Amount.InexactFloat64(),
		Text:    joinText(source, p.Notes),
	}
}

// DocumentFromRecord builds a document for a stored record.
func DocumentFromRecord(r *repository.Record) Document {
	return Document{
		ID:      r.ID.String(),
		Type:    string(r.Type),
		Contact: r.ContactName,
		Event:   r.EventName,
		Payment: r.PaymentMethod,
		Date:    r.EventDate.Format("2006-01-02"),
		Amount:  r.Amount().ToDecimal().InexactFloat64(),
		Text:    joinText(r.SourceText, r.Notes),
	}
}

func joinText(source, notes string) string {
	if notes == "" || notes == source {
		return source
	}
	return source + " " + notes
}

// Index wraps a memory-only bleve index.
type Index struct {
	index bleve.Index
	mu    sync.RWMutex
}

// NewIndex creates an empty index.
func NewIndex() (*Index, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}
	return &Index{index: index}, nil
}

// buildIndexMapping indexes Text with CJK bigrams and the categorical
// fields as exact keywords.
func buildIndexMapping() mapping.IndexMapping {
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = cjk.AnalyzerName

	keywordFieldMapping := bleve.NewTextFieldMapping()
	keywordFieldMapping.Analyzer = keyword.Name

	numericFieldMapping := bleve.NewNumericFieldMapping()

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("type", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("contact", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("event", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("payment", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("date", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("amount", numericFieldMapping)
	docMapping.AddFieldMappingsAt("text", textFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = cjk.AnalyzerName

	return indexMapping
}

// Add indexes docs in one batch, replacing documents with the same ID.
func (ix *Index) Add(docs ...Document) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	batch := ix.index.NewBatch()
	for _, doc := range docs {
		if err := batch.Index(doc.ID, doc); err != nil {
			return fmt.Errorf("failed to index document %s: %w", doc.ID, err)
		}
	}
	if err := ix.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to execute batch index: %w", err)
	}
	return nil
}

// Search matches words of the original sentences.
func (ix *Index) Search(text string, limit int) ([]Hit, error) {
	q := bleve.NewMatchQuery(text)
	q.SetField("text")
	return ix.run(q, limit)
}

// ByContact returns lines for exactly this contact name.
func (ix *Index) ByContact(name string, limit int) ([]Hit, error) {
	q := bleve.NewTermQuery(name)
	q.SetField("contact")
	return ix.run(q, limit)
}

// ByEvent returns lines of one event category, e.g. 婚礼.
func (ix *Index) ByEvent(event string, limit int) ([]Hit, error) {
	q := bleve.NewTermQuery(event)
	q.SetField("event")
	return ix.run(q, limit)
}

// AmountBetween returns lines with lo <= amount <= hi.
func (ix *Index) AmountBetween(lo, hi float64, limit int) ([]Hit, error) {
	inclusive := true
	q := bleve.NewNumericRangeInclusiveQuery(&lo, &hi, &inclusive, &inclusive)
	q.SetField("amount")
	return ix.run(q, limit)
}

func (ix *Index) run(q query.Query, limit int) ([]Hit, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if limit <= 0 {
		limit = defaultLimit
	}

	req := bleve.NewSearchRequest(q)
	req.Size = limit
	req.Fields = []string{"*"}

	res, err := ix.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		doc := Document{ID: h.ID}
		doc.Type, _ = h.Fields["type"].(string)
		doc.Contact, _ = h.Fields["contact"].(string)
		doc.Event, _ = h.Fields["event"].(string)
		doc.Payment, _ = h.Fields["payment"].(string)
		doc.Date, _ = h.Fields["date"].(string)
		doc.Amount, _ = h.Fields["amount"].(float64)
		doc.Text, _ = h.Fields["text"].(string)
		hits = append(hits, Hit{Document: doc, Score: h.Score})
	}
	return hits, nil
}

// Count returns the number of indexed documents.
func (ix *Index) Count() (uint64, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.index.DocCount()
}

// Close releases the index.
func (ix *Index) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.index.Close()
}
