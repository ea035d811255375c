package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// From démarre une requête sur une table.
func (c *Client) From(table string) *QueryBuilder {
	return &QueryBuilder{client: c, table: table}
}

type filter struct {
	column string
	op     string
	value  string
}

// QueryBuilder construit une requête PostgREST.
type QueryBuilder struct {
	client  *Client
	table   string
	columns string
	filters []filter
	orders  []string
	limit   int
	single  bool
}

// Select choisit les colonnes, jointures comprises (ex: "id,product:products(*)").
func (q *QueryBuilder) Select(columns string) *QueryBuilder {
	q.columns = columns
	return q
}

func (q *QueryBuilder) Eq(column string, value any) *QueryBuilder {
	return q.addFilter(column, "eq", value)
}

func (q *QueryBuilder) addFilter(column, op string, value any) *QueryBuilder {
	q.filters = append(q.filters, filter{column: column, op: op, value: fmt.Sprintf("%v", value)})
	return q
}

func (q *QueryBuilder) Order(column string, ascending bool) *QueryBuilder {
	dir := "asc"
	if !ascending {
		dir = "desc"
	}
	q.orders = append(q.orders, column+"."+dir)
	return q
}

func (q *QueryBuilder) Limit(n int) *QueryBuilder {
	q.limit = n
	return q
}

// Single demande un objet unique plutôt qu'un tableau (406 si 0 ou >1 ligne).
func (q *QueryBuilder) Single() *QueryBuilder {
	q.single = true
	return q
}

func (q *QueryBuilder) url(withSelect bool) string {
	reqURL := fmt.Sprintf("%s/rest/v1/%s", q.client.baseURL, q.table)

	params := url.Values{}
	if withSelect && q.columns != "" {
		params.Set("select", q.columns)
	}
	for _, f := range q.filters {
		params.Add(f.column, f.op+"."+f.value)
	}
	if len(q.orders) > 0 {
		params.Set("order", strings.Join(q.orders, ","))
	}
	if q.limit > 0 {
		params.Set("limit", strconv.Itoa(q.limit))
	}
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	return reqURL
}

func (q *QueryBuilder) newRequest(ctx context.Context, method string, body any) (*http.Request, error) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("supabase: encodage %s: %w", q.table, err)
		}
		reader = bytes.NewReader(data)
	}

	var req *http.Request
	var err error
	if reader != nil {
		req, err = http.NewRequestWithContext(ctx, method, q.url(true), reader)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, q.url(true), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("supabase: création requête: %w", err)
	}

	q.client.setHeaders(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if q.single {
		req.Header.Set("Accept", "application/vnd.pgrst.object+json")
	}
	return req, nil
}

// Execute lance un SELECT.
func (q *QueryBuilder) Execute(ctx context.Context) (*Response, error) {
	req, err := q.newRequest(ctx, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	return q.client.do(req)
}

// Insert insère data et renvoie les lignes créées (avec les colonnes de Select).
func (q *QueryBuilder) Insert(ctx context.Context, data any) (*Response, error) {
	req, err := q.newRequest(ctx, http.MethodPost, data)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Prefer", "return=representation")
	return q.client.do(req)
}

// Update applique data aux lignes filtrées.
func (q *QueryBuilder) Update(ctx context.Context, data any) (*Response, error) {
	req, err := q.newRequest(ctx, http.MethodPatch, data)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Prefer", "return=representation")
	return q.client.do(req)
}

// Delete supprime les lignes filtrées.
func (q *QueryBuilder) Delete(ctx context.Context) (*Response, error) {
	req, err := q.newRequest(ctx, http.MethodDelete, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Prefer", "return=representation")
	return q.client.do(req)
}

// RPC appelle une fonction SQL exposée. Si columns est non vide, il sert de
// select sur le résultat (les jointures sont permises si la fonction retourne
// des lignes d'une table).
func (c *Client) RPC(ctx context.Context, fn string, params any, columns string) (*Response, error) {
	q := &QueryBuilder{client: c, table: "rpc/" + fn, columns: columns}
	if params == nil {
		params = struct{}{}
	}
	req, err := q.newRequest(ctx, http.MethodPost, params)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}
