// internal/app/features/events/list.go
package events

import (
	"net/http"

	"github.com/dalemusser/eventroster/internal/app/system/roster"
	"github.com/dalemusser/eventroster/internal/domain/models"
)

type eventItem struct {
	models.Event
	Status roster.Status `json:"status"`
	Count  *int          `json:"count,omitempty"`
}

// ServeList handles GET /events: the catalog, with the status of any page
// that is already live. Listing never starts a page.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	all := h.Catalog.All()
	items := make([]eventItem, 0, len(all))
	for _, ev := range all {
		item := eventItem{Event: ev, Status: roster.StatusIdle}
		if p, ok := h.Pages.Get(ev.ID); ok {
			st := p.State()
			item.Status = st.Status
			item.Count = &st.Count
		}
		items = append(items, item)
	}
	writeJSON(w, http.StatusOK, items)
}
