package unshard

import "github.com/molecula/qcore/op"

// mergeBatchedWrite implements spec.md §4.4 "Batched replace / batched
// insert": sum the counter fields, concatenate changes, concatenate
// warnings with deduplication (spec.md:91), and cap both array-valued
// fields at limits when non-zero. Per spec.md §9 open question (b), when
// more than one shard reports FirstErr, the first writer (in
// shard-response order) wins; this is a deliberate resolution recorded in
// DESIGN.md rather than a spec-mandated rule.
func mergeBatchedWrite(responses []op.BatchedWriteResponse, limits op.Limits, profiled bool) (op.BatchedWriteResponse, error) {
	var out op.WriteStats
	seenWarnings := make(map[string]bool)
	for _, r := range responses {
		s := r.Stats
		out.Inserted += s.Inserted
		out.Replaced += s.Replaced
		out.Unchanged += s.Unchanged
		out.Errors += s.Errors
		out.Skipped += s.Skipped
		out.Deleted += s.Deleted
		for _, w := range s.Warnings {
			if seenWarnings[w] {
				continue
			}
			seenWarnings[w] = true
			out.Warnings = append(out.Warnings, w)
		}
		out.Changes = append(out.Changes, s.Changes...)
		if out.FirstErr == nil && s.FirstErr != nil {
			out.FirstErr = s.FirstErr
		}
	}

	if limits.MaxWarnings > 0 && len(out.Warnings) > limits.MaxWarnings {
		out.Warnings = out.Warnings[:limits.MaxWarnings]
	}
	if limits.MaxChanges > 0 && len(out.Changes) > limits.MaxChanges {
		out.Changes = out.Changes[:limits.MaxChanges]
	}

	resp := op.BatchedWriteResponse{Stats: out}
	metas := make([]op.ResponseMeta, len(responses))
	for i, r := range responses {
		metas[i] = r.ResponseMeta
	}
	mergeMeta(&resp.ResponseMeta, metas, profiled)
	return resp, nil
}
