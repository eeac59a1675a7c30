package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/x-xyz/fpomarket/base/ctx"
	"github.com/x-xyz/fpomarket/base/validator"
	"github.com/x-xyz/fpomarket/domain"
	"github.com/x-xyz/fpomarket/middleware"
	authMiddleware "github.com/x-xyz/fpomarket/stores/auth/delivery/http/middleware"
	authUsecase "github.com/x-xyz/fpomarket/stores/auth/usecase"
	ledgerDelivery "github.com/x-xyz/fpomarket/stores/ledger/delivery/http"
	listingDelivery "github.com/x-xyz/fpomarket/stores/listing/delivery/http"
)

type apiResponse struct {
	Data   json.RawMessage `json:"data"`
	Status string          `json:"status"`
}

var _ = Describe("HTTP api", func() {
	var (
		s      *Stack
		e      *echo.Echo
		tokens map[domain.AccountId]string
	)

	BeforeEach(func() {
		s = NewStack(DefaultMarketConfig(), market)

		auth := authUsecase.New("e2e-secret", 0)
		tokens = map[domain.AccountId]string{}
		for _, a := range []domain.AccountId{seller, bob, carol, dave} {
			tok, err := auth.SignToken(ctx.Background(), a)
			Expect(err).NotTo(HaveOccurred())
			tokens[a] = tok
		}

		e = echo.New()
		e.Validator = validator.NewCustomValidator(validator.New())
		e.Use(middleware.InitMiddleware().AddContext())
		am := authMiddleware.New(auth, operator)
		listingDelivery.New(e, s.Listings, am)
		ledgerDelivery.New(e, s.Ledger, am)
	})

	AfterEach(func() {
		s.Close()
	})

	call := func(method, target, body string, as domain.AccountId) (int, apiResponse) {
		req := httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		if as != "" {
			req.Header.Set(echo.HeaderAuthorization, "Bearer "+tokens[as])
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		res := apiResponse{}
		if rec.Body.Len() > 0 {
			Expect(json.Unmarshal(rec.Body.Bytes(), &res)).To(Succeed())
		}
		return rec.Code, res
	}

	It("ranks proposals placed over http", func() {
		code, _ := call(http.MethodPost, "/listings",
			`{"contract":"nft.near","lot":"lot-h","metadata":{"title":"Item"},"supplyTotal":2,"buyNowPrice":"1000","minProposalPrice":"100","deposit":"5000"}`,
			seller)
		Expect(code).To(Equal(http.StatusCreated))

		for _, p := range []struct {
			who   domain.AccountId
			price string
		}{{bob, "100"}, {carol, "150"}, {dave, "200"}} {
			code, _ := call(http.MethodPost, "/listings/nft.near/lot-h/proposals",
				`{"price":"`+p.price+`","deposit":"`+p.price+`"}`, p.who)
			Expect(code).To(Equal(http.StatusCreated))
		}

		code, res := call(http.MethodGet, "/listings/nft.near/lot-h/acceptable-price", "", "")
		Expect(code).To(Equal(http.StatusOK))
		Expect(string(res.Data)).To(Equal(`"160"`))

		code, res = call(http.MethodGet, "/accounts/bob.near/balance", "", "")
		Expect(code).To(Equal(http.StatusOK))
		Expect(string(res.Data)).To(Equal(`"` + strconv.Itoa(fundedBalance) + `"`))
	})

	It("maps engine errors to status codes", func() {
		code, res := call(http.MethodPost, "/listings",
			`{"contract":"nft.near","lot":"lot-h","supplyTotal":1,"buyNowPrice":"50","deposit":"5000"}`,
			seller)
		Expect(code).To(Equal(http.StatusBadRequest))
		Expect(res.Status).To(Equal("fail"))

		code, _ = call(http.MethodPost, "/listings/nft.near/missing/buy", `{"deposit":"1000"}`, bob)
		Expect(code).To(Equal(http.StatusNotFound))

		code, _ = call(http.MethodPost, "/listings/nft.near/missing/buy", `{"deposit":"1000"}`, "")
		Expect(code).To(Equal(http.StatusUnauthorized))
	})
})
