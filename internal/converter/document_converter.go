package converter

import (
	"encoding/json"
	"fmt"
	"reflect"

	"insurance-marketplace/internal/domain/entity"
	"insurance-marketplace/internal/infrastructure/docstore"

	"github.com/go-viper/mapstructure/v2"
	"github.com/shopspring/decimal"
)

var decimalType = reflect.TypeOf(decimal.Decimal{})

// decimalHook accepts prices written as strings by this service and as
// numbers by older clients.
func decimalHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != decimalType {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		if v == "" {
			return decimal.Zero, nil
		}
		return decimal.NewFromString(v)
	case float64:
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case json.Number:
		return decimal.NewFromString(v.String())
	case nil:
		return decimal.Zero, nil
	}
	return data, nil
}

// decode fills out from the document fields using the firestore tags of the
// entity. Numbers read back from JSON storage arrive as float64 and booleans
// may have been written as strings, so decoding is weakly typed.
func decode(doc docstore.Document, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "firestore",
		WeaklyTypedInput: true,
		DecodeHook:       decimalHook,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(doc.Data); err != nil {
		return fmt.Errorf("decode %s/%s: %w", doc.Collection, doc.ID, err)
	}
	return nil
}

func UserToDocument(u *entity.User) map[string]interface{} {
	return map[string]interface{}{
		"firstName": u.FirstName,
		"lastName":  u.LastName,
		"email":     u.Email,
		"phone":     u.Phone,
		"role":      string(u.Role),
		"birthDate": u.BirthDate,
		"image":     u.Image,
	}
}

func DocumentToUser(doc docstore.Document) (*entity.User, error) {
	var u entity.User
	if err := decode(doc, &u); err != nil {
		return nil, err
	}
	u.ID = doc.ID
	return &u, nil
}

func AgentToDocument(a *entity.Agent) map[string]interface{} {
	return map[string]interface{}{
		"name":          a.Name,
		"email":         a.Email,
		"phone":         a.Phone,
		"company":       a.Company,
		"licenseNumber": a.LicenseNumber,
	}
}

func DocumentToAgent(doc docstore.Document) (*entity.Agent, error) {
	var a entity.Agent
	if err := decode(doc, &a); err != nil {
		return nil, err
	}
	a.ID = doc.ID
	return &a, nil
}

func InsurerToDocument(i *entity.Insurer) map[string]interface{} {
	return map[string]interface{}{
		"firstName":     i.FirstName,
		"lastName":      i.LastName,
		"email":         i.Email,
		"phone":         i.Phone,
		"fiscalId":      i.FiscalID,
		"direction":     i.Direction,
		"licenseNumber": i.LicenseNumber,
		"companyName":   i.CompanyName,
		"description":   i.Description,
		"birthDate":     i.BirthDate,
		"image":         i.Image,
		"role":          string(i.Role),
	}
}

func DocumentToInsurer(doc docstore.Document) (*entity.Insurer, error) {
	var i entity.Insurer
	if err := decode(doc, &i); err != nil {
		return nil, err
	}
	i.ID = doc.ID
	return &i, nil
}

func InsuranceToDocument(i *entity.Insurance) map[string]interface{} {
	return map[string]interface{}{
		"name":        i.Name,
		"type":        i.Type,
		"price":       i.Price.String(),
		"description": i.Description,
		"image":       i.Image,
		"active":      i.Active,
	}
}

func DocumentToInsurance(doc docstore.Document) (*entity.Insurance, error) {
	var i entity.Insurance
	if err := decode(doc, &i); err != nil {
		return nil, err
	}
	i.ID = doc.ID
	return &i, nil
}

func PostToDocument(p *entity.Post) map[string]interface{} {
	return map[string]interface{}{
		"titulo":      p.Titulo,
		"descripcion": p.Descripcion,
		"userId":      p.UserID,
		"tipo":        string(p.Tipo),
		"image":       p.Image,
		"date":        p.Date,
	}
}

func DocumentToPost(doc docstore.Document) (*entity.Post, error) {
	var p entity.Post
	if err := decode(doc, &p); err != nil {
		return nil, err
	}
	p.ID = doc.ID
	return &p, nil
}

func MessageToDocument(m *entity.Message) map[string]interface{} {
	return map[string]interface{}{
		"text":         m.Text,
		"isSentByUser": m.IsSentByUser,
		"userId":       m.UserID,
		"timestamp":    m.Timestamp,
	}
}

func DocumentToMessage(doc docstore.Document) (*entity.Message, error) {
	var m entity.Message
	if err := decode(doc, &m); err != nil {
		return nil, err
	}
	m.ID = doc.ID
	return &m, nil
}

// DocumentsTo decodes every document with fn. A single undecodable document
// fails the whole batch.
func DocumentsTo[T any](docs []docstore.Document, fn func(docstore.Document) (*T, error)) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		v, err := fn(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}
