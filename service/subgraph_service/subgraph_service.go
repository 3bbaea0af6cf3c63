package subgraph_service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/imroc/req"
	"github.com/tidwall/gjson"
)

var (
	ErrNotConfigured = errors.New("subgraph url is not configured")
	ErrEmptyQuery    = errors.New("query is required")
	ErrUpstream      = errors.New("subgraph request failed")
)

// latestMintsQuery mirrors the listing the mint page shows
const latestMintsQuery = `query LatestMints($first: Int!) {
  nftMinteds(first: $first, orderBy: blockTimestamp, orderDirection: desc) {
    id
    creator
    tokenId
    supply
    blockNumber
    blockTimestamp
    transactionHash
  }
}`

// GraphQLRequest body forwarded to the subgraph
type GraphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

// QueryError one entry of a GraphQL errors array
type QueryError struct {
	Messages []string
}

func (e *QueryError) Error() string {
	return "subgraph query error: " + strings.Join(e.Messages, "; ")
}

// MintedNFT row of the nftMinteds listing
type MintedNFT struct {
	ID              string `json:"id"`
	Creator         string `json:"creator"`
	TokenID         string `json:"tokenId"`
	Supply          string `json:"supply"`
	BlockNumber     string `json:"blockNumber"`
	BlockTimestamp  string `json:"blockTimestamp"`
	TransactionHash string `json:"transactionHash"`
}

// SubgraphService proxies GraphQL queries to the hosted event index
type SubgraphService struct {
	url string
	r   *req.Req
}

// NewSubgraphService create service for url
func NewSubgraphService(url string, timeout time.Duration) *SubgraphService {
	r := req.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	}
	return &SubgraphService{url: strings.TrimSpace(url), r: r}
}

// Enabled reports whether an upstream url is configured
func (s *SubgraphService) Enabled() bool {
	return s.url != ""
}

// Query forward query and return the raw "data" member
func (s *SubgraphService) Query(ctx context.Context, q *GraphQLRequest) (json.RawMessage, error) {
	if !s.Enabled() {
		return nil, ErrNotConfigured
	}
	if q == nil || strings.TrimSpace(q.Query) == "" {
		return nil, ErrEmptyQuery
	}

	resp, err := s.r.Post(s.url, req.Header{"Content-Type": "application/json"}, req.BodyJSON(q), ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	body, err := resp.ToBytes()
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}
	code := resp.Response().StatusCode
	if code < 200 || code >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, code)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: response is not json", ErrUpstream)
	}

	parsed := gjson.ParseBytes(body)
	if errs := parsed.Get("errors"); errs.Exists() && len(errs.Array()) > 0 {
		qe := &QueryError{}
		for _, e := range errs.Array() {
			qe.Messages = append(qe.Messages, e.Get("message").String())
		}
		log.Printf("⚠️  [subgraph] %v", qe)
		return nil, qe
	}
	data := parsed.Get("data")
	if !data.Exists() {
		return nil, fmt.Errorf("%w: response has no data", ErrUpstream)
	}
	return json.RawMessage(data.Raw), nil
}

// LatestMints newest n mints from the subgraph
func (s *SubgraphService) LatestMints(ctx context.Context, n int) ([]MintedNFT, error) {
	if n <= 0 {
		n = 10
	}
	data, err := s.Query(ctx, &GraphQLRequest{
		Query:     latestMintsQuery,
		Variables: map[string]interface{}{"first": n},
	})
	if err != nil {
		return nil, err
	}

	mints := []MintedNFT{}
	rows := gjson.GetBytes(data, "nftMinteds")
	if !rows.IsArray() {
		return mints, nil
	}
	if err := json.Unmarshal([]byte(rows.Raw), &mints); err != nil {
		return nil, fmt.Errorf("decode nftMinteds: %w", err)
	}
	return mints, nil
}
