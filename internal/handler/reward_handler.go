package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jutt16/right2thrive-sub001/internal/domain"
	"github.com/jutt16/right2thrive-sub001/internal/flow"
	"github.com/jutt16/right2thrive-sub001/internal/guard"
	"github.com/jutt16/right2thrive-sub001/internal/handler/middleware"
	"github.com/jutt16/right2thrive-sub001/internal/logging"
	"github.com/jutt16/right2thrive-sub001/internal/service"
	"github.com/jutt16/right2thrive-sub001/internal/session"
	"github.com/jutt16/right2thrive-sub001/pkg/apiclient"
)

// Card actions.
const (
	ActionRedeem       = "redeem"
	ActionSaveForLater = "save_for_later"

	flashRedeemed = "redeemed"
)

// RewardCard is a catalog entry as the page renders it.
type RewardCard struct {
	domain.Reward
	Action        string               `json:"action"`
	RedeemEnabled bool                 `json:"redeem_enabled"`
	Redemption    *flow.RedemptionView `json:"redemption,omitempty"`
}

// RedeemedNotice is the read-once banner shown after a successful redemption.
type RedeemedNotice struct {
	RewardID       int64             `json:"reward_id"`
	RewardName     string            `json:"reward_name,omitempty"`
	Redemption     domain.Redemption `json:"redemption"`
	NewBalance     int               `json:"new_balance"`
	DismissAfterMS int64             `json:"dismiss_after_ms"`
}

type RewardHandler struct {
	responder
	rewardService *service.RewardService
	sessions      *session.Store
	redemptions   *flow.Registry[*flow.Redemption]
}

func NewRewardHandler(
	rewardService *service.RewardService,
	sessions *session.Store,
	redemptions *flow.Registry[*flow.Redemption],
	g *guard.Guard,
	log logging.Logger,
) *RewardHandler {
	return &RewardHandler{
		responder:     responder{guard: g, log: log},
		rewardService: rewardService,
		sessions:      sessions,
		redemptions:   redemptions,
	}
}

func redemptionKey(sid string, rewardID int64) string {
	return sessionFlowPrefix(sid) + strconv.FormatInt(rewardID, 10)
}

// sessionFlowPrefix is shared by every redemption key of one session.
func sessionFlowPrefix(sid string) string {
	return sid + ":"
}

// card builds the view of reward. Affordability comes only from the backend's
// can_afford; the local balance is never consulted.
func (h *RewardHandler) card(sid string, reward domain.Reward) RewardCard {
	card := RewardCard{Reward: reward, Action: ActionSaveForLater}
	if reward.CanAfford {
		card.Action = ActionRedeem
	}

	card.RedeemEnabled = reward.CanAfford
	if r, ok := h.redemptions.Peek(redemptionKey(sid, reward.ID)); ok {
		card.RedeemEnabled = r.RedeemEnabled(reward)
		if r.State() != flow.RedemptionIdle {
			view := r.View()
			card.Redemption = &view
		}
	}
	return card
}

// Catalog lists rewards with the current balance
// GET /rewards
func (h *RewardHandler) Catalog(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sid := middleware.SessionID(c)
	token := middleware.CurrentSession(c).Token

	rewards, err := h.rewardService.ListRewards(ctx, token)
	if err != nil {
		return h.fail(c, err, "We couldn't load rewards right now.")
	}

	cards := make([]RewardCard, len(rewards))
	for i, reward := range rewards {
		cards[i] = h.card(sid, reward)
	}

	body := fiber.Map{"rewards": cards}

	// Right after a redemption the balance is the one that response reported.
	var notice RedeemedNotice
	if h.sessions.PopFlash(ctx, sid, flashRedeemed, &notice) {
		body["redeemed"] = notice
		body["balance"] = notice.NewBalance
		return c.Status(fiber.StatusOK).JSON(body)
	}

	dash, err := h.rewardService.Dashboard(ctx, token)
	switch {
	case err == nil:
		body["balance"] = dash.Balance
	case errors.Is(err, apiclient.ErrAuthExpired):
		return h.fail(c, err, "")
	default:
		h.log.Warn(ctx, "balance unavailable for catalog", "error", err)
	}

	return c.Status(fiber.StatusOK).JSON(body)
}

// Reward returns one reward card
// GET /rewards/:id
func (h *RewardHandler) Reward(c *fiber.Ctx) error {
	id, ok := parseRewardID(c)
	if !ok {
		return invalidRewardID(c)
	}

	reward, err := h.rewardService.GetReward(c.UserContext(), middleware.CurrentSession(c).Token, id)
	if err != nil {
		if errors.Is(err, service.ErrRewardNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error":   "not_found",
				"message": "This reward is no longer available.",
			})
		}
		return h.fail(c, err, "We couldn't load this reward right now.")
	}

	return c.Status(fiber.StatusOK).JSON(h.card(middleware.SessionID(c), *reward))
}

// Dashboard returns the token dashboard
// GET /dashboard
func (h *RewardHandler) Dashboard(c *fiber.Ctx) error {
	ctx := c.UserContext()
	dash, err := h.rewardService.Dashboard(ctx, middleware.CurrentSession(c).Token)
	if err != nil {
		return h.fail(c, err, "We couldn't load your dashboard right now.")
	}

	body := fiber.Map{"dashboard": dash}
	if snap, ok := h.sessions.Snapshot(ctx, middleware.SessionID(c)); ok {
		body["user"] = snap
	}
	return c.Status(fiber.StatusOK).JSON(body)
}

// Overview returns the token overview
// GET /rewards/overview
func (h *RewardHandler) Overview(c *fiber.Ctx) error {
	overview, err := h.rewardService.Overview(c.UserContext(), middleware.CurrentSession(c).Token)
	if err != nil {
		return h.fail(c, err, "We couldn't load your token overview right now.")
	}
	return c.Status(fiber.StatusOK).JSON(overview)
}
