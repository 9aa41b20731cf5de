package response

import (
	"time"

	"blog-backend/internal/model"
)

// UserInfo 用户信息（隐藏密码、OTP、重置令牌）
type UserInfo struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// FilterUserInfo 过滤用户信息，隐藏敏感字段
func FilterUserInfo(user *model.User) *UserInfo {
	if user == nil {
		return nil
	}
	return &UserInfo{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
	}
}

// ProfileInfo 用户资料
type ProfileInfo struct {
	ID       uint      `json:"id"`
	User     *UserInfo `json:"user,omitempty"`
	Image    string    `json:"image"`
	FullName string    `json:"full_name"`
	Bio      string    `json:"bio"`
	About    string    `json:"about"`
	Author   bool      `json:"author"`
	Country  string    `json:"country"`
	Facebook string    `json:"facebook"`
	Twitter  string    `json:"twitter"`
	Date     time.Time `json:"date"`
}

// FilterProfileInfo 转换资料，姓名为空时回退到用户姓名
func FilterProfileInfo(profile *model.Profile, user *model.User) *ProfileInfo {
	if profile == nil {
		return nil
	}
	info := &ProfileInfo{
		ID:       profile.ID,
		User:     FilterUserInfo(user),
		Image:    profile.Image,
		FullName: profile.FullName,
		Bio:      profile.Bio,
		About:    profile.About,
		Author:   profile.Author,
		Country:  profile.Country,
		Facebook: profile.Facebook,
		Twitter:  profile.Twitter,
		Date:     profile.CreatedAt,
	}
	if info.FullName == "" && user != nil {
		info.FullName = user.FullName
	}
	return info
}

// CategoryInfo 分类
type CategoryInfo struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	Image     string `json:"image"`
	Slug      string `json:"slug"`
	PostCount int64  `json:"post_count"`
}

func FilterCategoryInfo(c *model.Category) *CategoryInfo {
	if c == nil {
		return nil
	}
	return &CategoryInfo{ID: c.ID, Title: c.Title, Image: c.Image, Slug: c.Slug, PostCount: c.PostCount}
}

func FilterCategoryList(list []model.Category) []*CategoryInfo {
	out := make([]*CategoryInfo, 0, len(list))
	for i := range list {
		out = append(out, FilterCategoryInfo(&list[i]))
	}
	return out
}

// PostRef 嵌套在评论、通知中的文章摘要
type PostRef struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
	Image string `json:"image"`
}

func filterPostRef(p *model.Post) *PostRef {
	if p == nil {
		return nil
	}
	return &PostRef{ID: p.ID, Title: p.Title, Slug: p.Slug, Image: p.Image}
}

// CommentInfo 评论
type CommentInfo struct {
	ID      uint      `json:"id"`
	Post    *PostRef  `json:"post,omitempty"`
	PostID  uint      `json:"post_id"`
	UserID  *uint     `json:"user_id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Comment string    `json:"comment"`
	Reply   string    `json:"reply"`
	Date    time.Time `json:"date"`
}

func FilterCommentInfo(c *model.Comment) *CommentInfo {
	if c == nil {
		return nil
	}
	return &CommentInfo{
		ID:      c.ID,
		Post:    filterPostRef(c.Post),
		PostID:  c.PostID,
		UserID:  c.UserID,
		Name:    c.Name,
		Email:   c.Email,
		Comment: c.Comment,
		Reply:   c.Reply,
		Date:    c.CreatedAt,
	}
}

func FilterCommentList(list []model.Comment) []*CommentInfo {
	out := make([]*CommentInfo, 0, len(list))
	for i := range list {
		out = append(out, FilterCommentInfo(&list[i]))
	}
	return out
}

// PostDetail 读接口使用的文章详情（嵌套作者、资料、分类、评论）
type PostDetail struct {
	ID          uint           `json:"id"`
	User        *UserInfo      `json:"user"`
	Profile     *ProfileInfo   `json:"profile"`
	Category    *CategoryInfo  `json:"category"`
	Title       string         `json:"title"`
	Image       string         `json:"image"`
	Description string         `json:"description"`
	Tags        string         `json:"tags"`
	Status      string         `json:"status"`
	Views       int64          `json:"views"`
	Likes       []uint         `json:"likes"`
	LikesCount  int            `json:"likes_count"`
	Slug        string         `json:"slug"`
	Date        time.Time      `json:"date"`
	Comments    []*CommentInfo `json:"comments"`
}

// FilterPostDetail 转换文章详情，likes 为点赞用户ID
func FilterPostDetail(p *model.Post, likes []uint) *PostDetail {
	if p == nil {
		return nil
	}
	if likes == nil {
		likes = []uint{}
	}
	d := &PostDetail{
		ID:          p.ID,
		User:        FilterUserInfo(p.User),
		Category:    FilterCategoryInfo(p.Category),
		Title:       p.Title,
		Image:       p.Image,
		Description: p.Description,
		Tags:        p.Tags,
		Status:      string(p.Status),
		Views:       p.Views,
		Likes:       likes,
		LikesCount:  len(likes),
		Slug:        p.Slug,
		Date:        p.CreatedAt,
		Comments:    FilterCommentList(p.Comments),
	}
	if p.User != nil {
		d.Profile = FilterProfileInfo(p.User.Profile, nil)
	}
	return d
}

// FilterPostDetailList 批量转换，likes 按文章ID索引
func FilterPostDetailList(posts []model.Post, likes map[uint][]uint) []*PostDetail {
	out := make([]*PostDetail, 0, len(posts))
	for i := range posts {
		out = append(out, FilterPostDetail(&posts[i], likes[posts[i].ID]))
	}
	return out
}

// PostWrite 创建/编辑接口返回的文章（外键仅为ID）
type PostWrite struct {
	ID          uint      `json:"id"`
	User        uint      `json:"user"`
	Category    uint      `json:"category"`
	Title       string    `json:"title"`
	Image       string    `json:"image"`
	Description string    `json:"description"`
	Tags        string    `json:"tags"`
	Status      string    `json:"status"`
	Views       int64     `json:"views"`
	Slug        string    `json:"slug"`
	Date        time.Time `json:"date"`
}

func FilterPostWrite(p *model.Post) *PostWrite {
	if p == nil {
		return nil
	}
	return &PostWrite{
		ID:          p.ID,
		User:        p.UserID,
		Category:    p.CategoryID,
		Title:       p.Title,
		Image:       p.Image,
		Description: p.Description,
		Tags:        p.Tags,
		Status:      string(p.Status),
		Views:       p.Views,
		Slug:        p.Slug,
		Date:        p.CreatedAt,
	}
}

// NotificationInfo 通知
type NotificationInfo struct {
	ID    uint      `json:"id"`
	User  uint      `json:"user"`
	Actor *UserInfo `json:"actor"`
	Post  *PostRef  `json:"post"`
	Type  string    `json:"type"`
	Seen  bool      `json:"seen"`
	Date  time.Time `json:"date"`
}

func FilterNotificationInfo(n *model.Notification) *NotificationInfo {
	if n == nil {
		return nil
	}
	return &NotificationInfo{
		ID:    n.ID,
		User:  n.UserID,
		Actor: FilterUserInfo(n.Actor),
		Post:  filterPostRef(n.Post),
		Type:  string(n.Type),
		Seen:  n.Seen,
		Date:  n.CreatedAt,
	}
}

func FilterNotificationList(list []model.Notification) []*NotificationInfo {
	out := make([]*NotificationInfo, 0, len(list))
	for i := range list {
		out = append(out, FilterNotificationInfo(&list[i]))
	}
	return out
}

// AuthorStats 作者统计
type AuthorStats struct {
	Views     int64 `json:"views"`
	Posts     int64 `json:"posts"`
	Likes     int64 `json:"likes"`
	Bookmarks int64 `json:"bookmarks"`
}
