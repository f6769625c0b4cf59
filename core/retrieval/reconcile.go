package retrieval

import (
	"sort"

	"github.com/siherrmann/mailrag/model"
)

// Reconcile turns raw similarity hits into per-receiver groups.
// Hits whose stored receiver does not match receiver are dropped, the
// rest are grouped by their stored receiver in order of first appearance
// and sorted by email insertion order, then chunk position. Scores only decide which hits survive the
// search limit, they never decide the output order.
func Reconcile(hits []*model.SearchHit, receiver string) []*model.RetrievalGroup {
	var groups []*model.RetrievalGroup
	byReceiver := make(map[string]*model.RetrievalGroup)

	for _, hit := range hits {
		if hit == nil || hit.Chunk == nil || !model.SameReceiver(hit.Chunk.Receiver, receiver) {
			continue
		}

		group, ok := byReceiver[hit.Chunk.Receiver]
		if !ok {
			group = &model.RetrievalGroup{Receiver: hit.Chunk.Receiver}
			byReceiver[hit.Chunk.Receiver] = group
			groups = append(groups, group)
		}
		group.Hits = append(group.Hits, hit)
	}

	for _, group := range groups {
		sort.SliceStable(group.Hits, func(i, j int) bool {
			a, b := group.Hits[i].Chunk, group.Hits[j].Chunk
			if a.EmailID != b.EmailID {
				return a.EmailID < b.EmailID
			}
			return a.ChunkIndex < b.ChunkIndex
		})
	}

	return groups
}
