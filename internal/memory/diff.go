package memory

import (
	"strconv"

	"github.com/sergi/go-diff/diffmatchpatch"

	"kora/internal/types"
)

// PayloadKind tells ApplyDiff how to interpret a modification payload.
type PayloadKind string

const (
	// PayloadPatch carries diffmatchpatch patch text to replay on the old content.
	PayloadPatch PayloadKind = "patch"
	// PayloadFull carries the rewritten content verbatim. Used when the content
	// is too dissimilar for a patch to be cheaper than the rewrite.
	PayloadFull PayloadKind = "full"
)

// ModificationPayload describes how one item's content changed, together with
// the byte lengths before and after.
type ModificationPayload struct {
	Kind    PayloadKind `json:"kind"`
	Text    string      `json:"text"`
	OldLen  int         `json:"old_len"`
	NewLen  int         `json:"new_len"`
}

// ModifiedContextItem records a content change at one position.
type ModifiedContextItem struct {
	ItemID       string              `json:"item_id"`
	PreviousHash string              `json:"previous_hash"`
	Payload      ModificationPayload `json:"payload"`
}

// ContextDiff is a computed delta between two ordered context lists, keyed by
// position index. Diffs are transient: computed, applied once to produce a
// new cumulative context, then discarded.
type ContextDiff struct {
	AddedItems       []types.ContextItem   `json:"added_items"`
	RemovedItemIDs   []string              `json:"removed_item_ids"`
	ModifiedItems    []ModifiedContextItem `json:"modified_items"`
	CompressionRatio float64               `json:"compression_ratio"`
}

// DiffEngine computes and applies structural diffs between ordered context
// snapshots and deduplicates near-identical items. Items are compared by
// position index, not semantic identity: an insertion or deletion shifts all
// subsequent positions and surfaces as wholesale modifications. This is a
// deliberate simplification, not a sequence-alignment diff.
type DiffEngine struct {
	hasher ContentHasher
	dmp    *diffmatchpatch.DiffMatchPatch
}

// NewDiffEngine constructs a diff engine.
func NewDiffEngine() *DiffEngine {
	return &DiffEngine{dmp: diffmatchpatch.New()}
}

// CreateDiff computes the positional delta from old to new. Positions present
// in both lists with differing content hashes become modifications; positions
// only in new become additions; positions only in old become removals.
func (e *DiffEngine) CreateDiff(oldItems, newItems []types.ContextItem) ContextDiff {
	var diff ContextDiff

	shared := len(oldItems)
	if len(newItems) < shared {
		shared = len(newItems)
	}

	for i := 0; i < shared; i++ {
		oldHash := e.hasher.Hash(oldItems[i].Content)
		newHash := e.hasher.Hash(newItems[i].Content)
		if oldHash == newHash {
			continue
		}
		diff.ModifiedItems = append(diff.ModifiedItems, ModifiedContextItem{
			ItemID:       strconv.Itoa(i),
			PreviousHash: oldHash,
			Payload:      e.buildPayload(oldItems[i].Content, newItems[i].Content),
		})
	}

	if len(newItems) > len(oldItems) {
		diff.AddedItems = append(diff.AddedItems, newItems[len(oldItems):]...)
	}
	for i := len(newItems); i < len(oldItems); i++ {
		diff.RemovedItemIDs = append(diff.RemovedItemIDs, strconv.Itoa(i))
	}

	originalSize := 0
	for _, item := range oldItems {
		originalSize += len(item.Content)
	}
	compressedSize := 0
	for _, item := range diff.AddedItems {
		compressedSize += len(item.Content)
	}
	for _, mod := range diff.ModifiedItems {
		compressedSize += len(mod.Payload.Text)
	}

	if originalSize > 0 {
		diff.CompressionRatio = float64(compressedSize) / float64(originalSize)
	} else {
		diff.CompressionRatio = 1.0
	}

	return diff
}

// buildPayload prefers patch text when it is cheaper than the rewritten
// content and replays cleanly; otherwise it falls back to the full rewrite.
func (e *DiffEngine) buildPayload(oldContent, newContent string) ModificationPayload {
	payload := ModificationPayload{
		Kind:   PayloadFull,
		Text:   newContent,
		OldLen: len(oldContent),
		NewLen: len(newContent),
	}

	patches := e.dmp.PatchMake(oldContent, newContent)
	patchText := e.dmp.PatchToText(patches)
	if patchText == "" || len(patchText) >= len(newContent) {
		return payload
	}

	// Only trust the patch if it reproduces the new content exactly.
	applied, _ := e.dmp.PatchApply(patches, oldContent)
	if applied != newContent {
		return payload
	}

	payload.Kind = PayloadPatch
	payload.Text = patchText
	return payload
}

// ApplyDiff produces a new context list: surviving base items in original
// order with removed positions dropped and modified positions rewritten, then
// the added items appended at the end. Malformed position keys are ignored.
func (e *DiffEngine) ApplyDiff(base []types.ContextItem, diff ContextDiff) []types.ContextItem {
	removed := make(map[int]bool, len(diff.RemovedItemIDs))
	for _, id := range diff.RemovedItemIDs {
		if idx, err := strconv.Atoi(id); err == nil {
			removed[idx] = true
		}
	}

	result := make([]types.ContextItem, 0, len(base)+len(diff.AddedItems))
	for i, item := range base {
		if !removed[i] {
			result = append(result, item)
		}
	}

	for _, mod := range diff.ModifiedItems {
		idx, err := strconv.Atoi(mod.ItemID)
		if err != nil || idx < 0 || idx >= len(result) {
			continue
		}
		item := result[idx]
		item.Content = e.rewriteContent(item.Content, mod.Payload)
		result[idx] = item
	}

	return append(result, diff.AddedItems...)
}

func (e *DiffEngine) rewriteContent(oldContent string, payload ModificationPayload) string {
	switch payload.Kind {
	case PayloadPatch:
		patches, err := e.dmp.PatchFromText(payload.Text)
		if err != nil {
			return oldContent
		}
		applied, _ := e.dmp.PatchApply(patches, oldContent)
		return applied
	default:
		return payload.Text
	}
}

// Compress deduplicates items by content hash: the first occurrence of each
// distinct hash is kept, later duplicates are dropped, relative order is
// preserved. Metadata does not participate in the comparison.
func (e *DiffEngine) Compress(items []types.ContextItem) []types.ContextItem {
	seen := make(map[string]bool, len(items))
	compressed := make([]types.ContextItem, 0, len(items))
	for _, item := range items {
		hash := e.hasher.Hash(item.Content)
		if seen[hash] {
			continue
		}
		seen[hash] = true
		compressed = append(compressed, item)
	}
	return compressed
}
