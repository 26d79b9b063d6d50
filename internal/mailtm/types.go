package mailtm

import (
	"context"
	"time"
)

// Address is a provider-side mailbox.
type Address struct {
	ID        string     `json:"id"`
	Address   string     `json:"address"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Message is the normalized mail record handed back to relay callers.
type Message struct {
	ID        string     `json:"id"`
	From      string     `json:"from,omitempty"`
	To        []string   `json:"to,omitempty"`
	Subject   string     `json:"subject"`
	Body      string     `json:"body,omitempty"`
	Seen      bool       `json:"seen"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Domain is a provider domain new addresses can be created under.
type Domain struct {
	ID       string `json:"id"`
	Domain   string `json:"domain"`
	IsActive bool   `json:"is_active"`
}

// Gateway is the set of provider operations the relay forwards.
type Gateway interface {
	CreateAddress(ctx context.Context, address string) (*Address, error)
	ListMessages(ctx context.Context, folder string) ([]Message, error)
	GetMessage(ctx context.Context, id string) (*Message, error)
	SendMessage(ctx context.Context, to, subject, body string) (*Message, error)
	DeleteMessage(ctx context.Context, id string) (bool, error)
	ListDomains(ctx context.Context) ([]Domain, error)
}

// ClientFactory builds a Gateway scoped to one delegated credential.
type ClientFactory interface {
	NewClient(token string) Gateway
}

// Provider wire shapes.

type wireParty struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}

type wireMessage struct {
	ID        string      `json:"id"`
	From      *wireParty  `json:"from,omitempty"`
	To        []wireParty `json:"to,omitempty"`
	Subject   string      `json:"subject"`
	Intro     string      `json:"intro,omitempty"`
	Text      string      `json:"text,omitempty"`
	Seen      bool        `json:"seen"`
	CreatedAt *time.Time  `json:"createdAt,omitempty"`
}

type wireAccount struct {
	ID        string     `json:"id"`
	Address   string     `json:"address"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

type wireDomain struct {
	ID       string `json:"id"`
	Domain   string `json:"domain"`
	IsActive bool   `json:"isActive"`
}

type wireCollection[T any] struct {
	Member []T `json:"hydra:member"`
}

type wireSend struct {
	To      []wireParty `json:"to"`
	Subject string      `json:"subject"`
	Text    string      `json:"text"`
}

func (w wireMessage) normalize() Message {
	m := Message{
		ID:        w.ID,
		Subject:   w.Subject,
		Body:      w.Text,
		Seen:      w.Seen,
		CreatedAt: w.CreatedAt,
	}
	if m.Body == "" {
		m.Body = w.Intro
	}
	if w.From != nil {
		m.From = w.From.Address
	}
	for _, p := range w.To {
		m.To = append(m.To, p.Address)
	}
	return m
}
