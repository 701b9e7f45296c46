package notifier

import (
	"sort"

	"github.com/K-Le-PaaS/backend-hybrid-sub002/internal/types"
)

// ResolveChannel picks the destination channel for a request. Precedence:
//
//  1. Explicit channel on the request.
//  2. Channel kind on the request, matched against the mapping whose
//     ChannelKind agrees.
//  3. Mapping registered for the request's event kind.
//  4. The table's default channel.
//
// The result is never empty as long as the table has a default.
func ResolveChannel(req types.NotificationRequest, table *types.RoutingTable) string {
	if req.Channel != "" {
		return req.Channel
	}

	if req.ChannelKind != "" {
		// Iterate in sorted kind order so two mappings sharing a
		// ChannelKind resolve the same way every time.
		kinds := make([]string, 0, len(table.Mappings))
		for kind := range table.Mappings {
			kinds = append(kinds, string(kind))
		}
		sort.Strings(kinds)
		for _, kind := range kinds {
			m := table.Mappings[types.EventKind(kind)]
			if m.ChannelKind == req.ChannelKind && m.Channel != "" {
				return m.Channel
			}
		}
	}

	if m, ok := table.Mappings[req.EventKind]; ok && m.Channel != "" {
		return m.Channel
	}

	return table.DefaultChannel
}
