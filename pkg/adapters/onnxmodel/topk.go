package onnxmodel

import (
	"fmt"
	"sort"

	"github.com/user/framesampler/pkg/ports"
)

// TopK returns the k highest scores as predictions sorted by descending
// score, ties broken by class index. k <= 0 returns all of them.
func TopK(scores []float32, labels []string, k int) []ports.Prediction {
	preds := make([]ports.Prediction, len(scores))
	for i, s := range scores {
		preds[i] = ports.Prediction{ClassID: i, Label: labelFor(labels, i), Score: s}
	}
	sort.SliceStable(preds, func(a, b int) bool {
		return preds[a].Score > preds[b].Score
	})
	if k > 0 && k < len(preds) {
		preds = preds[:k]
	}
	return preds
}

func labelFor(labels []string, i int) string {
	if i < len(labels) && labels[i] != "" {
		return labels[i]
	}
	return fmt.Sprintf("class %d", i)
}
