package metrics

import "github.com/DukeRupert/bazaar/internal/domain"

// QuotaAllowed records an approved placement.
func QuotaAllowed(kind domain.QuotaKind) {
	QuotaDecisionsTotal.WithLabelValues(string(kind), "allowed").Inc()
}

// QuotaDenied records a placement rejected by a tier cap.
func QuotaDenied(kind domain.QuotaKind) {
	QuotaDecisionsTotal.WithLabelValues(string(kind), "denied").Inc()
}

// ItemCreated records a new product or service.
func ItemCreated(kind domain.ItemKind, placed bool) {
	placement := "unplaced"
	if placed {
		placement = "shelf"
	}
	ItemsCreated.WithLabelValues(string(kind), placement).Inc()
}

// ItemDeleted records a deleted product or service.
func ItemDeleted(kind domain.ItemKind) {
	ItemsDeleted.WithLabelValues(string(kind)).Inc()
}

// ShopTransitioned records a moderation transition.
func ShopTransitioned(to domain.ShopStatus) {
	ShopTransitionsTotal.WithLabelValues(string(to)).Inc()
}

// Repaired records reference array repairs made by the consistency sweep.
func Repaired(orphansLinked, danglingDropped int) {
	if orphansLinked > 0 {
		ReconcileRepairsTotal.WithLabelValues("orphan_linked").Add(float64(orphansLinked))
	}
	if danglingDropped > 0 {
		ReconcileRepairsTotal.WithLabelValues("dangling_dropped").Add(float64(danglingDropped))
	}
}
