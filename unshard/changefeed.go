package unshard

import "github.com/molecula/qcore/op"

// mergeChangefeedSubscribe implements spec.md §4.4 "changefeed_subscribe":
// union the server ID and mailbox sets across shards. It serves both
// ChangefeedSubscribe and ChangefeedLimitSubscribe (SPEC_FULL.md §12), which
// share a response shape and merge rule.
func mergeChangefeedSubscribe(responses []op.ChangefeedSubscribeResponse, profiled bool) (op.ChangefeedSubscribeResponse, error) {
	for _, r := range responses {
		if r.QueryErr != nil {
			return op.ChangefeedSubscribeResponse{QueryErr: r.QueryErr}, nil
		}
	}

	var out op.ChangefeedSubscribeResponse
	seenServers := map[string]bool{}
	seenMailboxes := map[string]bool{}
	for _, r := range responses {
		for _, id := range r.ServerIDs {
			if !seenServers[id] {
				seenServers[id] = true
				out.ServerIDs = append(out.ServerIDs, id)
			}
		}
		for _, m := range r.Mailboxes {
			if !seenMailboxes[m] {
				seenMailboxes[m] = true
				out.Mailboxes = append(out.Mailboxes, m)
			}
		}
	}

	metas := make([]op.ResponseMeta, len(responses))
	for i, r := range responses {
		metas[i] = r.ResponseMeta
	}
	mergeMeta(&out.ResponseMeta, metas, profiled)
	return out, nil
}

// mergeChangefeedStamp implements spec.md §4.4 "changefeed_stamp": take the
// max stamp per peer across shards. Peer monotonicity across shards is an
// external contract (spec.md §9 open question (c)) that qcore assumes
// rather than enforces.
func mergeChangefeedStamp(responses []op.ChangefeedStampResponse, profiled bool) (op.ChangefeedStampResponse, error) {
	for _, r := range responses {
		if r.QueryErr != nil {
			return op.ChangefeedStampResponse{QueryErr: r.QueryErr}, nil
		}
	}

	var order []string
	max := map[string]uint64{}
	for _, r := range responses {
		for _, ps := range r.Stamps {
			cur, ok := max[ps.Peer]
			if !ok {
				order = append(order, ps.Peer)
			}
			if !ok || ps.Stamp > cur {
				max[ps.Peer] = ps.Stamp
			}
		}
	}

	out := op.ChangefeedStampResponse{Stamps: make([]op.PeerStamp, len(order))}
	for i, peer := range order {
		out.Stamps[i] = op.PeerStamp{Peer: peer, Stamp: max[peer]}
	}

	metas := make([]op.ResponseMeta, len(responses))
	for i, r := range responses {
		metas[i] = r.ResponseMeta
	}
	mergeMeta(&out.ResponseMeta, metas, profiled)
	return out, nil
}
