package models

import "time"

type Article struct {
	ID    int64     `db:"id" json:"id"`
	Title string    `db:"title" json:"title"`
	Desc  string    `db:"description" json:"desc"`
	Img   *string   `db:"img" json:"img"`
	Cat   string    `db:"cat" json:"cat"`
	Date  time.Time `db:"date" json:"date"`
	UID   int64     `db:"uid" json:"uid"`
}

// ArticleDetail is an article joined with its author.
type ArticleDetail struct {
	Article
	Username string  `db:"username" json:"username"`
	UserImg  *string `db:"user_img" json:"userImg"`
}
