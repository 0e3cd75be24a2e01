package rest

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vladislavdragonenkov/costumeshop/internal/domain"
	"github.com/vladislavdragonenkov/costumeshop/internal/query"
)

// nestedRoutes — маршруты чтения акций магазина и костюмов акции.
// Костюм относится к акции через дополнительную колонку OFFER_ID.
type nestedRoutes struct {
	offers   *resource[*domain.Offer]
	costumes *resource[*domain.Costume]
	links    linkBuilder
}

func (n *nestedRoutes) mount(r chi.Router) {
	r.Get("/shops/{id}/offers", n.shopOffers)
	r.Get("/shops/{id}/offers/{offerId}/costumes", n.offerCostumes)
	r.Get("/shops/{id}/offers/{offerId}/costumes/{costumeId}", n.offerCostume)
}

func (n *nestedRoutes) shopOffers(w http.ResponseWriter, r *http.Request) {
	shopID := chi.URLParam(r, "id")
	fail := failure{schema: domain.OfferSchema, action: "loading", plural: true}

	q, err := listQueryFromRequest(r)
	if err != nil {
		writeError(w, r, n.offers.logger, fail, err)
		return
	}
	q.Scope = map[string]string{"SHOP_ID": shopID}
	offers, err := n.offers.svc.List(r.Context(), q)
	if err != nil {
		writeError(w, r, n.offers.logger, fail, err)
		return
	}
	if len(offers) == 0 {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "No offers found for this shop"})
		return
	}

	path := []string{"shops", shopID, "offers"}
	writeJSON(w, http.StatusOK, map[string]any{
		"offers": recordMaps(offers),
		"_links": Links{
			"self":     n.links.get(path...),
			"addOffer": n.links.post(path...),
		},
	})
}

func (n *nestedRoutes) offerCostumes(w http.ResponseWriter, r *http.Request) {
	shopID, offerID := chi.URLParam(r, "id"), chi.URLParam(r, "offerId")
	fail := failure{schema: domain.CostumeSchema, action: "loading", plural: true}

	q, err := listQueryFromRequest(r)
	if err != nil {
		writeError(w, r, n.costumes.logger, fail, err)
		return
	}
	q.Scope = offerScope(shopID, offerID)
	costumes, err := n.costumes.svc.List(r.Context(), q)
	if err != nil {
		writeError(w, r, n.costumes.logger, fail, err)
		return
	}
	if len(costumes) == 0 {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "No costumes found for this offer"})
		return
	}

	path := []string{"shops", shopID, "offers", offerID, "costumes"}
	writeJSON(w, http.StatusOK, map[string]any{
		"costumes": recordMaps(costumes),
		"_links": Links{
			"self":       n.links.get(path...),
			"addCostume": n.links.post(path...),
		},
	})
}

func (n *nestedRoutes) offerCostume(w http.ResponseWriter, r *http.Request) {
	shopID, offerID, costumeID := chi.URLParam(r, "id"), chi.URLParam(r, "offerId"), chi.URLParam(r, "costumeId")
	fail := failure{schema: domain.CostumeSchema, action: "loading"}

	costume, err := n.costumes.svc.Get(r.Context(), costumeID)
	if err == nil && !query.MatchesScope(costume, offerScope(shopID, offerID)) {
		err = fmt.Errorf("%w: costume %s in offer %s of shop %s", domain.ErrNotFound, costumeID, offerID, shopID)
	}
	if err != nil {
		writeError(w, r, n.costumes.logger, fail, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"costume": domain.AsMap(costume),
		"_links":  n.costumes.itemLinks("shops", shopID, "offers", offerID, "costumes", costumeID),
	})
}

func offerScope(shopID, offerID string) map[string]string {
	return map[string]string{"SHOP_ID": shopID, "OFFER_ID": offerID}
}
