package models

// CatalogKind справочник: категории или жанры. Значение совпадает с именем таблицы.
type CatalogKind string

const (
	CatalogCategories CatalogKind = "categories"
	CatalogGenres     CatalogKind = "genres"
)

// CatalogItem запись справочника.
type CatalogItem struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Category категория произведения.
type Category = CatalogItem

// Genre жанр произведения.
type Genre = CatalogItem

// Title произведение. Rating вычисляется при чтении и равен nil, если отзывов нет.
// Genres всегда отсортированы по slug.
type Title struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Year     int       `json:"year"`
	Category *Category `json:"category"`
	Genres   []Genre   `json:"genre"`
	Rating   *float64  `json:"rating"`
}

// TitleInput данные для создания или полного описания произведения.
type TitleInput struct {
	Name         string
	Year         int
	CategorySlug string
	GenreSlugs   []string
}

// TitlePatch частичное обновление произведения.
type TitlePatch struct {
	Name         *string
	Year         *int
	CategorySlug *string
	GenreSlugs   []string // nil не меняет жанры, пустой срез очищает их
}

// TitleFilter фильтры списка произведений. Пустые поля не применяются.
type TitleFilter struct {
	Category string // slug категории
	Genre    string // slug жанра
	Name     string // подстрока названия без учёта регистра
	Year     int
}

// Page параметры пагинации limit/offset.
type Page struct {
	Limit  int
	Offset int
}
