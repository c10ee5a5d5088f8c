// Package schema описывает фиксированный набор сущностей приложения:
// имя таблицы, упорядоченный список колонок с логическими типами
// и колонку вложения, если сущность владеет загруженным файлом.
// Набор дескрипторов закрыт и не изменяется после старта процесса.
package schema

import "fmt"

// Kind логический тип колонки.
type Kind int

const (
	// Text строковое значение.
	Text Kind = iota
	// Number вещественное число.
	Number
	// Integer целое число.
	Integer
	// Date дата или дата со временем.
	Date
	// Ref целочисленная ссылка на идентификатор другой сущности.
	// Ссылочная целостность не проверяется: висячие ссылки допустимы.
	Ref
)

// Entity тег типа сущности.
type Entity string

const (
	Product      Entity = "product"
	User         Entity = "user"
	Subscription Entity = "subscription"
	Payment      Entity = "payment"
	Promotion    Entity = "promotion"
	Contact      Entity = "contact"
)

// Column описывает одну колонку таблицы.
type Column struct {
	Name string
	Kind Kind
}

// Descriptor неизменяемое описание сущности. Колонка id
// (автоинкрементный суррогатный ключ) подразумевается у всех сущностей
// и в список колонок не входит.
type Descriptor struct {
	Table string
	// Columns задают порядок выборки и привязки параметров.
	Columns []Column
	// Attachment имя колонки, хранящей путь к файлу-вложению,
	// либо пустая строка.
	Attachment string
}

var descriptors = map[Entity]Descriptor{
	Product: {
		Table: "product",
		Columns: []Column{
			{Name: "package_id", Kind: Ref},
			{Name: "name", Kind: Text},
			{Name: "price", Kind: Number},
			{Name: "description", Kind: Text},
			{Name: "duration", Kind: Integer},
			{Name: "picture", Kind: Text},
		},
		Attachment: "picture",
	},
	User: {
		Table: "users",
		Columns: []Column{
			{Name: "email", Kind: Text},
			{Name: "password", Kind: Text},
			{Name: "firstname", Kind: Text},
			{Name: "lastname", Kind: Text},
			{Name: "tel", Kind: Text},
			{Name: "date_of_birth", Kind: Date},
			{Name: "id_card_number", Kind: Integer},
			{Name: "member_type", Kind: Text},
		},
	},
	Subscription: {
		Table: "subscription",
		Columns: []Column{
			{Name: "product_id", Kind: Ref},
			{Name: "customer", Kind: Ref},
			{Name: "payment", Kind: Ref},
			{Name: "end_date", Kind: Date},
		},
	},
	Payment: {
		Table: "payment",
		Columns: []Column{
			{Name: "payment_owner", Kind: Ref},
			{Name: "method", Kind: Text},
			{Name: "date", Kind: Date},
			{Name: "picture", Kind: Text},
		},
		Attachment: "picture",
	},
	Promotion: {
		Table: "promotion",
		Columns: []Column{
			{Name: "start_date", Kind: Date},
			{Name: "end_date", Kind: Date},
			{Name: "promotion_product", Kind: Ref},
			{Name: "discount_percent", Kind: Number},
			{Name: "discount_code", Kind: Text},
		},
	},
	Contact: {
		Table: "contact",
		Columns: []Column{
			{Name: "contact_name", Kind: Text},
			{Name: "contact_email", Kind: Text},
			{Name: "contact_tel", Kind: Text},
			{Name: "title", Kind: Text},
			{Name: "detail", Kind: Text},
		},
	},
}

// Get возвращает дескриптор сущности по тегу. Запрос неизвестного тега
// является ошибкой программирования, а не условием времени выполнения,
// поэтому функция паникует.
func Get(e Entity) Descriptor {
	d, ok := descriptors[e]
	if !ok {
		panic(fmt.Sprintf("schema: unknown entity %q", e))
	}
	return d
}

// Column возвращает описание колонки по имени.
func (d Descriptor) Column(name string) (Column, bool) {
	for _, col := range d.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}

// HasAttachment сообщает, владеет ли сущность колонкой вложения.
func (d Descriptor) HasAttachment() bool {
	return d.Attachment != ""
}
