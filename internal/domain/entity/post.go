package entity

import "fmt"

const (
	PostsCollection = "posts"
	PostImagePrefix = "posts_images"
	PostFieldUserID = "userId"
	PostFieldTipo   = "tipo"
	PostFieldDate   = "date"
)

// PostTipo is the category a post is filtered by.
type PostTipo string

const (
	PostTipoAutos       PostTipo = "Autos"
	PostTipoPersonal    PostTipo = "Personal"
	PostTipoEmpresarial PostTipo = "Empresarial"
)

func ParsePostTipo(s string) (PostTipo, error) {
	switch t := PostTipo(s); t {
	case PostTipoAutos, PostTipoPersonal, PostTipoEmpresarial:
		return t, nil
	}
	return "", fmt.Errorf("unknown post tipo %q", s)
}

// Post is a marketplace publication. UserID references a User or Insurer
// document id.
type Post struct {
	ID          string   `firestore:"-" json:"id"`
	Titulo      string   `firestore:"titulo" json:"titulo"`
	Descripcion string   `firestore:"descripcion" json:"descripcion"`
	UserID      string   `firestore:"userId" json:"userId"`
	Tipo        PostTipo `firestore:"tipo" json:"tipo"`
	Image       string   `firestore:"image" json:"image"`
	Date        string   `firestore:"date" json:"date"`
}

func PostImageKey(name string) string {
	return PostImagePrefix + "/" + name
}
