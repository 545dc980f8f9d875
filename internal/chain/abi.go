package chain

// 各コントラクトのABIのうち、このサービスが消費するメソッドとイベントのみを定義する。
// コントラクト本体は外部デプロイ済みであり、ここはその表面だけを扱う。

const userRegistryABI = `[
  {"type":"function","name":"registerUser","stateMutability":"nonpayable","inputs":[{"name":"identifier","type":"string"},{"name":"identifierType","type":"string"},{"name":"wallet","type":"address"}],"outputs":[]},
  {"type":"function","name":"getWallet","stateMutability":"view","inputs":[{"name":"identifier","type":"string"}],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"getIdentifiers","stateMutability":"view","inputs":[{"name":"wallet","type":"address"}],"outputs":[{"name":"","type":"string[]"}]},
  {"type":"function","name":"isAvailable","stateMutability":"view","inputs":[{"name":"identifier","type":"string"}],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"identifierToUser","stateMutability":"view","inputs":[{"name":"","type":"string"}],"outputs":[{"name":"wallet","type":"address"},{"name":"identifierType","type":"string"},{"name":"registeredAt","type":"uint256"},{"name":"isActive","type":"bool"}]}
]`

const walletFactoryABI = `[
  {"type":"function","name":"createWallet","stateMutability":"payable","inputs":[],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"createWalletWithIdentifier","stateMutability":"payable","inputs":[{"name":"identifier","type":"string"},{"name":"identifierType","type":"string"}],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"hasWallet","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"getWallet","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"deploymentFee","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]}
]`

const smartWalletABI = `[
  {"type":"function","name":"deposit","stateMutability":"payable","inputs":[],"outputs":[]},
  {"type":"function","name":"withdraw","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"sendPayment","stateMutability":"nonpayable","inputs":[{"name":"identifier","type":"string"},{"name":"amount","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"sendTokenPayment","stateMutability":"nonpayable","inputs":[{"name":"identifier","type":"string"},{"name":"token","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"getBalance","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getTokenBalance","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"token","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getSentPayments","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"tuple[]","components":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"amount","type":"uint256"},{"name":"token","type":"address"},{"name":"identifier","type":"string"},{"name":"timestamp","type":"uint256"}]}]},
  {"type":"function","name":"getReceivedPayments","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"tuple[]","components":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"amount","type":"uint256"},{"name":"token","type":"address"},{"name":"identifier","type":"string"},{"name":"timestamp","type":"uint256"}]}]},
  {"type":"event","name":"PaymentSent","inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false},{"name":"identifier","type":"string","indexed":false}],"anonymous":false},
  {"type":"event","name":"PaymentReceived","inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false}],"anonymous":false}
]`

const paymentProcessorABI = `[
  {"type":"function","name":"processBatchPayment","stateMutability":"payable","inputs":[{"name":"recipients","type":"string[]"},{"name":"amounts","type":"uint256[]"},{"name":"token","type":"address"}],"outputs":[]},
  {"type":"function","name":"batchPaymentFee","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"paymentRequestFee","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"scheduledPaymentFee","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"createPaymentRequest","stateMutability":"payable","inputs":[{"name":"payer","type":"address"},{"name":"amount","type":"uint256"},{"name":"token","type":"address"},{"name":"message","type":"string"},{"name":"expiry","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"fulfillPaymentRequest","stateMutability":"payable","inputs":[{"name":"requestId","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"cancelPaymentRequest","stateMutability":"nonpayable","inputs":[{"name":"requestId","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"createScheduledPayment","stateMutability":"payable","inputs":[{"name":"recipientIdentifier","type":"string"},{"name":"amount","type":"uint256"},{"name":"token","type":"address"},{"name":"frequency","type":"uint256"},{"name":"totalExecutions","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"executeScheduledPayment","stateMutability":"nonpayable","inputs":[{"name":"scheduleId","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"cancelScheduledPayment","stateMutability":"nonpayable","inputs":[{"name":"scheduleId","type":"uint256"}],"outputs":[]}
]`

const erc20ABI = `[
  {"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
  {"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
]`
