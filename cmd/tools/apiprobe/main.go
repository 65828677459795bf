package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/caremeal/caremeal/app/internal/analysis/nutrition"
	"github.com/caremeal/caremeal/app/internal/api"
	"github.com/caremeal/caremeal/app/internal/config"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000"})

	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Warn("无法加载 .env，改用系统环境变量")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("配置加载失败")
	}

	mode := flag.String("mode", "", "测试模式: chat、analyze 或 login")
	text := flag.String("text", "", "chat 模式发送的消息")
	imagePath := flag.String("image", "", "analyze 模式上传的餐食图片路径")
	user := flag.String("user", "guest", "请求使用的用户 ID")
	password := flag.String("password", "", "login 模式的密码")
	timeout := flag.Duration("timeout", 90*time.Second, "请求超时时间")

	flag.Parse()

	client := api.NewClient(cfg.API, nil)
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	log := logrus.WithFields(logrus.Fields{"base_url": cfg.API.BaseURL, "user": *user})

	switch *mode {
	case "chat":
		runChat(ctx, log, client, *user, *text)
	case "analyze":
		runAnalyze(ctx, log, client, *user, *imagePath)
	case "login":
		runLogin(ctx, log, client, *user, *password)
	default:
		flag.Usage()
		log.Fatal("请通过 -mode=chat、-mode=analyze 或 -mode=login 指定测试模式")
	}
}

func runChat(ctx context.Context, log *logrus.Entry, client *api.Client, user, text string) {
	if strings.TrimSpace(text) == "" {
		log.Fatal("chat 模式需要通过 -text 提供消息")
	}

	start := time.Now()
	resp, err := client.Chat(ctx, api.ChatRequest{UserID: user, UserMessage: text})
	if err != nil {
		log.WithError(err).Fatal("chat 调用失败")
	}

	log.WithFields(logrus.Fields{
		"elapsed": time.Since(start).Round(time.Millisecond),
		"sources": resp.Sources,
	}).Info("chat 成功")
	logrus.Println(resp.Reply)
}

func runAnalyze(ctx context.Context, log *logrus.Entry, client *api.Client, user, imagePath string) {
	if imagePath == "" {
		log.Fatal("analyze 模式需要通过 -image 指定图片路径")
	}

	file, err := os.Open(imagePath)
	if err != nil {
		log.WithError(err).Fatal("打开图片失败")
	}
	defer file.Close()

	start := time.Now()
	resp, err := client.AnalyzeFood(ctx, user, filepath.Base(imagePath), file)
	if err != nil {
		log.WithError(err).Fatal("analyze 调用失败")
	}

	parsed := nutrition.Extract(resp.Reply)
	log.WithFields(logrus.Fields{
		"elapsed":    time.Since(start).Round(time.Millisecond),
		"structured": parsed.Structured,
		"menu":       parsed.Item.Menu,
		"calories":   parsed.Item.Nutrition.Calories,
		"carbs":      parsed.Item.Nutrition.Carbs,
		"protein":    parsed.Item.Nutrition.Protein,
		"fat":        parsed.Item.Nutrition.Fat,
	}).Info("analyze 成功")
	logrus.Println(nutrition.StripBlock(resp.Reply))
}

func runLogin(ctx context.Context, log *logrus.Entry, client *api.Client, user, password string) {
	if password == "" {
		log.Fatal("login 模式需要通过 -password 提供密码")
	}

	resp, err := client.Login(ctx, api.LoginRequest{UserID: user, Password: password})
	if err != nil {
		log.WithError(err).Fatal("login 调用失败")
	}

	log.WithFields(logrus.Fields{
		"status":  resp.Status,
		"message": resp.Message,
	}).Info("login 完成")
	if len(resp.Data) > 0 {
		logrus.Println(string(resp.Data))
	}
}
