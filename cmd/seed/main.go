package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"blog-backend/config"
	"blog-backend/internal/model"
	"blog-backend/internal/repository"
	"blog-backend/internal/service"
	dbPkg "blog-backend/pkg/db"
	"blog-backend/pkg/jwt"
	"blog-backend/pkg/logger"
	"blog-backend/pkg/mailer"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"
)

// 所有种子用户共用的密码
const seedPassword = "Seed-Password-2024"

var categoryTitles = []string{"Technology", "Travel", "Food", "Lifestyle", "Science"}

func main() {
	users := flag.Int("users", 5, "number of users to create")
	posts := flag.Int("posts", 4, "posts per user")
	seed := flag.Int64("seed", 0, "gofakeit seed (0 = random)")
	flag.Parse()

	cfg := config.LoadConfig()
	log := logger.InitLogger(cfg.Log)
	defer log.Sync()

	gofakeit.Seed(*seed)

	db, err := dbPkg.InitDB(cfg.Database)
	if err != nil {
		log.Fatal("数据库连接失败", zap.Error(err))
	}
	defer dbPkg.CloseDB()
	if err := dbPkg.AutoMigrate(model.All()...); err != nil {
		log.Fatal("自动迁移失败", zap.Error(err))
	}

	ctx := context.Background()
	repos := repository.New(db)
	if err := repos.Categories.EnsureDefault(ctx); err != nil {
		log.Fatal("初始化默认分类失败", zap.Error(err))
	}

	auth := service.NewAuthService(repos, jwt.NewJWTService(cfg.JWT, nil), mailer.LogSender{}, cfg.Mail.ResetURL)
	dashboard := service.NewDashboardService(repos)
	interactions := service.NewInteractionService(repos, nil)

	categories, err := ensureCategories(ctx, repos)
	if err != nil {
		log.Fatal("创建分类失败", zap.Error(err))
	}

	// 1. 用户
	created := make([]*model.User, 0, *users)
	for i := 0; i < *users; i++ {
		u, err := auth.Register(ctx, service.RegisterInput{
			Email:     strings.ToLower(gofakeit.Username()) + "@" + gofakeit.DomainName(),
			FullName:  gofakeit.Name(),
			Password:  seedPassword,
			Password2: seedPassword,
		})
		if err != nil {
			log.Warn("创建用户失败，跳过", zap.Error(err))
			continue
		}
		created = append(created, u)
	}

	// 2. 文章
	var allPosts []*model.Post
	statuses := []string{"Active", "Active", "Active", "Draft", "Disable"}
	for _, u := range created {
		for j := 0; j < *posts; j++ {
			p, err := dashboard.CreatePost(ctx, u.ID, service.PostInput{
				Title:       strings.TrimSuffix(gofakeit.Sentence(5), "."),
				Image:       fmt.Sprintf("https://picsum.photos/seed/%s/800/450", gofakeit.UUID()),
				Description: gofakeit.Paragraph(3, 4, 12, "\n\n"),
				Tags:        strings.Join([]string{gofakeit.HackerNoun(), gofakeit.BuzzWord()}, ","),
				CategoryID:  categories[gofakeit.Number(0, len(categories)-1)].ID,
				Status:      statuses[gofakeit.Number(0, len(statuses)-1)],
			})
			if err != nil {
				log.Warn("创建文章失败，跳过", zap.Error(err))
				continue
			}
			allPosts = append(allPosts, p)
		}
	}

	// 3. 点赞、收藏与评论
	for _, p := range allPosts {
		for _, u := range created {
			if gofakeit.Bool() {
				if _, err := interactions.ToggleLike(ctx, u.ID, p.ID); err != nil {
					log.Warn("点赞失败", zap.Error(err))
				}
			}
			if gofakeit.Number(0, 4) == 0 {
				if _, err := interactions.ToggleBookmark(ctx, u.ID, p.ID); err != nil {
					log.Warn("收藏失败", zap.Error(err))
				}
			}
		}
		for k := gofakeit.Number(0, 3); k > 0; k-- {
			_, err := interactions.AddComment(ctx, service.CommentInput{
				PostID:  p.ID,
				Name:    gofakeit.Name(),
				Email:   gofakeit.Email(),
				Comment: gofakeit.Sentence(12),
			})
			if err != nil {
				log.Warn("评论失败", zap.Error(err))
			}
		}
	}

	log.Info("种子数据生成完成",
		zap.Int("users", len(created)),
		zap.Int("posts", len(allPosts)),
		zap.String("password", seedPassword),
	)
}

func ensureCategories(ctx context.Context, repos *repository.Repositories) ([]model.Category, error) {
	for _, title := range categoryTitles {
		c := &model.Category{Title: title}
		if err := repos.Categories.Create(ctx, c); err != nil && !repository.IsDuplicate(err) {
			return nil, err
		}
	}
	return repos.Categories.List(ctx)
}
