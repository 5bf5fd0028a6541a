package etcd

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// Registrar 在etcd中注册服务地址，租约到期自动下线
type Registrar struct {
	cli     *clientv3.Client
	prefix  string
	timeout time.Duration
	leaseID clientv3.LeaseID
	key     string
}

// ParseEndpoints 解析逗号分隔的地址列表
func ParseEndpoints(s string) []string {
	var endpoints []string
	for _, ep := range strings.Split(s, ",") {
		if ep = strings.TrimSpace(ep); ep != "" {
			endpoints = append(endpoints, ep)
		}
	}
	return endpoints
}

// ServiceKey 服务注册键，如 /services/tabledump/127.0.0.1:8080
func ServiceKey(prefix, serviceName, serviceAddr string) string {
	if prefix == "" {
		prefix = "/services"
	}
	return path.Join(prefix, serviceName, serviceAddr)
}

// NewRegistrar 创建etcd客户端
func NewRegistrar(endpoints []string, prefix string) (*Registrar, error) {
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("no etcd endpoints configured")
	}
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}

	return &Registrar{
		cli:     cli,
		prefix:  prefix,
		timeout: 5 * time.Second,
	}, nil
}

// Register 注册服务并保持心跳，直到ctx取消或Deregister
func (r *Registrar) Register(ctx context.Context, serviceName, serviceAddr string, ttl int64) error {
	grantCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	lease, err := r.cli.Grant(grantCtx, ttl)
	if err != nil {
		return fmt.Errorf("failed to create lease: %w", err)
	}

	key := ServiceKey(r.prefix, serviceName, serviceAddr)
	putCtx, cancelPut := context.WithTimeout(ctx, r.timeout)
	defer cancelPut()
	if _, err := r.cli.Put(putCtx, key, serviceAddr, clientv3.WithLease(lease.ID)); err != nil {
		return fmt.Errorf("failed to register service: %w", err)
	}

	ch, err := r.cli.KeepAlive(ctx, lease.ID)
	if err != nil {
		return fmt.Errorf("failed to keep alive: %w", err)
	}
	go func() {
		for range ch {
		}
		logrus.Debugf("[Etcd] Keepalive stopped for %s", key)
	}()

	r.leaseID = lease.ID
	r.key = key
	logrus.Infof("[Etcd] Service registered: %s -> %s", key, serviceAddr)
	return nil
}

// Deregister 撤销租约，注册键随之删除
func (r *Registrar) Deregister(ctx context.Context) error {
	if r.leaseID == 0 {
		return nil
	}
	revokeCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.cli.Revoke(revokeCtx, r.leaseID); err != nil {
		return fmt.Errorf("failed to revoke lease for %s: %w", r.key, err)
	}
	logrus.Infof("[Etcd] Service deregistered: %s", r.key)
	r.leaseID = 0
	return nil
}

// Close 关闭客户端
func (r *Registrar) Close() error {
	return r.cli.Close()
}
