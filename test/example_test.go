package test

import (
	"context"
	"fmt"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/forumtest"
	"github.com/redis/go-redis/v9"
)

// ExampleNew demonstrates client construction against a shared Redis session store.
func ExampleNew() {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})

	cfg := goSession.DefaultConfig()
	cfg.HTTP.BaseURL = "https://forum.example.com"
	cfg.Storage.Backend = goSession.StorageRedis
	cfg.Storage.Namespace = "tab-1"

	client, err := goSession.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithNavigator(goSession.NewPathNavigator("/")).
		Build()
	if err != nil {
		return
	}
	defer client.Close()
}

// ExampleClient_Landing walks a session from guest to moderator and back.
func ExampleClient_Landing() {
	srv, err := forumtest.NewServer()
	if err != nil {
		fmt.Println(err)
		return
	}
	defer srv.Close()

	cfg := goSession.DefaultConfig()
	cfg.HTTP.BaseURL = srv.URL()
	client, err := goSession.New().WithConfig(cfg).Build()
	if err != nil {
		fmt.Println(err)
		return
	}
	defer client.Close()

	ctx := context.Background()
	surface, _ := client.Landing(ctx)
	fmt.Println("before login:", surface)

	if err := client.Login(ctx, forumtest.ModeratorUsername, forumtest.ModeratorUsername); err != nil {
		fmt.Println(err)
		return
	}
	surface, _ = client.Landing(ctx)
	fmt.Println("after login:", surface)

	client.Logout(ctx)
	surface, _ = client.Landing(ctx)
	fmt.Println("after logout:", surface)

	// Output:
	// before login: public
	// after login: moderator
	// after logout: public
}
