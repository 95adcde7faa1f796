package main

import (
	"flag"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"spl-token-indexer-sol/internal/config"
	"spl-token-indexer-sol/internal/logic/grpc"
	"spl-token-indexer-sol/internal/service"
	"spl-token-indexer-sol/internal/svc"
	"spl-token-indexer-sol/pkg/logger"

	pb "github.com/rpcpool/yellowstone-grpc/examples/golang/proto"
	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
	zerosvc "github.com/zeromicro/go-zero/core/service"
)

var configFile = flag.String("f", "etc/grpc.yaml", "the config file")

func main() {
	defer func() {
		if r := recover(); r != nil {
			logx.Errorf("panic: %+v\nstack: %s", r, debug.Stack())
		}
	}()

	flag.Parse()

	var c config.GrpcConfig
	conf.MustLoad(*configFile, &c)
	if err := c.Validate(); err != nil {
		logx.Must(err)
	}

	logx.Must(logger.InitLogger(c.LogConf.ToLogOption()))
	defer logger.Sync()

	serviceContext, err := svc.NewGrpcServiceContext(c)
	logx.Must(err)
	defer serviceContext.Close()

	sg := zerosvc.NewServiceGroup()

	if c.MetricsAddr != "" {
		sg.Add(service.NewMetricsService(c.MetricsAddr, serviceContext.Registry))
	}

	var gaps grpc.GapReporter
	if c.RpcEndpoint != "" {
		checker := grpc.NewGapChecker(grpc.NewRpcBlockLister(c.RpcEndpoint), serviceContext.Progress,
			serviceContext.Registry, grpc.GapCheckOption{})
		sg.Add(checker)
		gaps = checker
	}

	blockChan := make(chan *pb.SubscribeUpdateBlock, 200)
	sg.Add(grpc.NewBlockProcessor(serviceContext, blockChan, gaps))

	grpcService, err := grpc.NewGrpcStreamManager(serviceContext, blockChan)
	logx.Must(err)
	sg.Add(grpcService)

	logx.Infof("Starting grpc stream service, target program: %s", c.IndexerConf.TargetProgram)

	// 启动服务
	go sg.Start()

	// 等待退出信号
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logx.Info("Shutting down services...")
	sg.Stop()
}
